package titan_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/titan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentChats(t *testing.T) {
	t.Parallel()

	t.Run("most recent first", func(t *testing.T) {
		t.Parallel()
		r := titan.NewRecentChats(0)
		r.Add("a", "first")
		r.Add("b", "second")
		list := r.List()
		require.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, "a", list[1].ID)
		assert.False(t, list[0].Timestamp.IsZero())
	})

	t.Run("re-adding moves to top", func(t *testing.T) {
		t.Parallel()
		r := titan.NewRecentChats(0)
		r.Add("a", "first")
		r.Add("b", "second")
		r.Add("a", "renamed")
		list := r.List()
		require.Len(t, list, 2)
		assert.Equal(t, titan.RecentChat{ID: "a", Title: "renamed", Timestamp: list[0].Timestamp}, list[0])
		assert.Equal(t, "b", list[1].ID)
	})

	t.Run("capped at limit", func(t *testing.T) {
		t.Parallel()
		r := titan.NewRecentChats(0)
		for i := range titan.DefaultRecentLimit + 5 {
			r.Add(fmt.Sprint(i), "chat")
		}
		assert.Equal(t, titan.DefaultRecentLimit, r.Len())
		assert.Equal(t, fmt.Sprint(titan.DefaultRecentLimit+4), r.List()[0].ID)
	})

	t.Run("list is a copy", func(t *testing.T) {
		t.Parallel()
		r := titan.NewRecentChats(3)
		r.Add("a", "x")
		list := r.List()
		list[0].Title = "mutated"
		assert.Equal(t, "x", r.List()[0].Title)
	})
}
