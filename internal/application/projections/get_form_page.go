package projections

import (
	"context"
	"log/slog"
	"time"

	"ukccu/internal/application/orchestrators"
	"ukccu/internal/domain/votingstatus"
)

// Page-load warnings when the status source cannot be read.
const (
	MsgNominationStatusUnknown = "Unable to verify nomination status. Please try again later."
	MsgVoteStatusUnknown       = "Unable to verify voting status. Please try again later."
)

// Banner is the alert shown above a form.
type Banner struct {
	Level   string
	Message string
}

// FormPage is the initial state of a form page.
type FormPage struct {
	Banner   *Banner
	Disabled bool
}

// FormPageVoteLock reports whether the visitor has already voted.
type FormPageVoteLock interface {
	HasVoted(ctx context.Context, visitor string) (bool, error)
}

// FormPageDeps holds dependencies for the nomination and vote page projections.
type FormPageDeps struct {
	Status votingstatus.Source
	Lock   FormPageVoteLock // vote page only
	Now    func() time.Time
}

// BannerFor converts a submission outcome to a page banner.
func BannerFor(o orchestrators.Outcome) *Banner {
	return &Banner{Level: string(o.Level), Message: o.Message}
}

// QueryNominationPage checks the voting window before the nomination form renders.
// PRE: deps.Status and deps.Now are non-nil
// POST: A closed window disables the form; an unreadable source warns but leaves it enabled
func QueryNominationPage(ctx context.Context, deps FormPageDeps) FormPage {
	return windowPage(ctx, deps, orchestrators.NominationStatusMessages, MsgNominationStatusUnknown)
}

// QueryVotePage checks the vote lock, then the voting window.
// PRE: deps.Status, deps.Lock and deps.Now are non-nil
// POST: A locked visitor sees the already-voted warning and a disabled form
func QueryVotePage(ctx context.Context, visitor string, deps FormPageDeps) FormPage {
	voted, err := deps.Lock.HasVoted(ctx, visitor)
	if err != nil {
		slog.Error("page_event", "event", "vote_lock_unreadable", "error", err)
	} else if voted {
		return FormPage{Banner: BannerFor(orchestrators.AlreadyVoted()), Disabled: true}
	}
	return windowPage(ctx, deps, orchestrators.VoteStatusMessages, MsgVoteStatusUnknown)
}

func windowPage(ctx context.Context, deps FormPageDeps, msgs orchestrators.StatusMessages, unknown string) FormPage {
	out, err := orchestrators.CheckStatus(ctx, deps.Status, deps.Now(), msgs)
	if err != nil {
		slog.Warn("page_event", "event", "status_unavailable", "error", err)
		return FormPage{Banner: &Banner{Level: string(orchestrators.LevelWarning), Message: unknown}}
	}
	if out != nil {
		return FormPage{Banner: BannerFor(*out), Disabled: out.DisableForm}
	}
	return FormPage{}
}
