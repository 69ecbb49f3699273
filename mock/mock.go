// Package mock provides test doubles for titan interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/titan"
)

// Interface compliance checks.
var (
	_ titan.ChatClient         = (*ChatClient)(nil)
	_ titan.ChatClient         = (*Service)(nil)
	_ titan.SessionStarter     = (*Service)(nil)
	_ titan.RequestCanceler    = (*Service)(nil)
	_ titan.ThinkingModeSetter = (*Service)(nil)
	_ titan.HistoryClearer     = (*Service)(nil)
	_ titan.VoteSubmitter      = (*Service)(nil)
	_ titan.ReportSubmitter    = (*Service)(nil)
	_ titan.StatusChecker      = (*Service)(nil)
	_ titan.Copier             = (*Copier)(nil)
)

// ChatClient is a test double for titan.ChatClient that implements none of
// the optional service interfaces. Set StreamFn before calling Stream.
type ChatClient struct {
	StreamFn func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error)
}

// Stream delegates to StreamFn.
func (c *ChatClient) Stream(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
	return c.StreamFn(ctx, req)
}

// Service is a test double for a client implementing every optional
// service interface. Each method panics when its function field is nil.
type Service struct {
	StreamFn          func(ctx context.Context, req titan.ChatRequest) (titan.Stream, error)
	NewSessionFn      func(ctx context.Context) (string, error)
	CancelRequestFn   func(ctx context.Context) error
	SetThinkingModeFn func(ctx context.Context, enabled bool) error
	ClearHistoryFn    func(ctx context.Context) error
	SubmitVoteFn      func(ctx context.Context, v titan.Vote) error
	SubmitReportFn    func(ctx context.Context, r titan.Report) error
	UserStatusFn      func(ctx context.Context) (titan.UserStatus, error)
}

// Stream delegates to StreamFn.
func (s *Service) Stream(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
	return s.StreamFn(ctx, req)
}

// NewSession delegates to NewSessionFn.
func (s *Service) NewSession(ctx context.Context) (string, error) {
	return s.NewSessionFn(ctx)
}

// CancelRequest delegates to CancelRequestFn.
func (s *Service) CancelRequest(ctx context.Context) error {
	return s.CancelRequestFn(ctx)
}

// SetThinkingMode delegates to SetThinkingModeFn.
func (s *Service) SetThinkingMode(ctx context.Context, enabled bool) error {
	return s.SetThinkingModeFn(ctx, enabled)
}

// ClearHistory delegates to ClearHistoryFn.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.ClearHistoryFn(ctx)
}

// SubmitVote delegates to SubmitVoteFn.
func (s *Service) SubmitVote(ctx context.Context, v titan.Vote) error {
	return s.SubmitVoteFn(ctx, v)
}

// SubmitReport delegates to SubmitReportFn.
func (s *Service) SubmitReport(ctx context.Context, r titan.Report) error {
	return s.SubmitReportFn(ctx, r)
}

// UserStatus delegates to UserStatusFn.
func (s *Service) UserStatus(ctx context.Context) (titan.UserStatus, error) {
	return s.UserStatusFn(ctx)
}

// Copier is a test double for titan.Copier.
type Copier struct {
	CopyFn func(text string) error
}

// Copy delegates to CopyFn.
func (c *Copier) Copy(text string) error {
	return c.CopyFn(text)
}
