package web

import (
	"context"
	"net/http"

	"ukccu/internal/adapters/iplookup"
	"ukccu/internal/application/orchestrators"
	"ukccu/internal/application/projections"
	"ukccu/internal/domain/form"
)

// formPageData is shared by the three form templates.
type formPageData struct {
	Banner   *projections.Banner
	Disabled bool
	Values   form.Fields
	Field    string // first invalid field
}

// statusFor maps an outcome to the response status of a re-rendered form.
func statusFor(k orchestrators.Kind) int {
	switch k {
	case orchestrators.KindSaved:
		return http.StatusOK
	case orchestrators.KindInvalid:
		return http.StatusUnprocessableEntity
	case orchestrators.KindClosed, orchestrators.KindDuplicate, orchestrators.KindAlreadyVoted:
		return http.StatusConflict
	case orchestrators.KindSaveFailed:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respond renders the form with the outcome banner, or returns it as JSON for API clients.
func (s *server) respond(w http.ResponseWriter, r *http.Request, out orchestrators.Outcome, fields form.Fields, tmpl, title, active string) {
	status := statusFor(out.Kind)
	if !isHTMLRequest(r) {
		writeJSON(w, status, out)
		return
	}
	data := formPageData{Banner: projections.BannerFor(out), Disabled: out.DisableForm, Field: out.Field}
	if !out.ResetForm {
		data.Values = fields
	}
	s.render(w, r, status, tmpl, title, active, data)
}

// parseFields reads a posted form. It returns false after writing a 400.
func parseFields(w http.ResponseWriter, r *http.Request) (form.Fields, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return nil, false
	}
	return form.FromValues(r.PostForm), true
}

func (s *server) handleBibleStudyPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "bible_study.html", "Bible Study", "bible-study", formPageData{})
}

func (s *server) handleBibleStudySubmit(w http.ResponseWriter, r *http.Request) {
	fields, ok := parseFields(w, r)
	if !ok {
		return
	}
	out := orchestrators.ExecuteSubmitRegistration(r.Context(),
		orchestrators.SubmitRegistrationInput{Visitor: visitor(r), Fields: fields},
		orchestrators.SubmitRegistrationDeps{
			Store:      s.deps.Submissions,
			Email:      s.deps.Email,
			GenerateID: s.deps.GenerateID,
			Now:        s.deps.Now,
		},
	)
	s.respond(w, r, out, fields, "bible_study.html", "Bible Study", "bible-study")
}

func (s *server) formPageDeps() projections.FormPageDeps {
	return projections.FormPageDeps{Status: s.deps.Status, Lock: s.deps.VoteLock, Now: s.deps.Now}
}

func (s *server) handleNominationsPage(w http.ResponseWriter, r *http.Request) {
	page := projections.QueryNominationPage(r.Context(), s.formPageDeps())
	s.render(w, r, http.StatusOK, "nominations.html", "Nominations", "nominations",
		formPageData{Banner: page.Banner, Disabled: page.Disabled})
}

func (s *server) handleNominationsSubmit(w http.ResponseWriter, r *http.Request) {
	fields, ok := parseFields(w, r)
	if !ok {
		return
	}
	out := orchestrators.ExecuteSubmitNomination(r.Context(),
		orchestrators.SubmitNominationInput{
			Visitor:   visitor(r),
			Fields:    fields,
			UserAgent: r.UserAgent(),
			ResolveIP: func(ctx context.Context) iplookup.Result {
				if s.deps.IP == nil {
					return iplookup.Resolved(iplookup.ClientIP(r, s.deps.TrustedProxies))
				}
				return s.deps.IP.Resolve(ctx, r)
			},
		},
		orchestrators.SubmitNominationDeps{
			Store:      s.deps.Submissions,
			Markers:    s.deps.Markers,
			Status:     s.deps.Status,
			Notifier:   s.deps.Notifier,
			IPSalt:     s.deps.IPSalt,
			GenerateID: s.deps.GenerateID,
			Now:        s.deps.Now,
		},
	)
	s.respond(w, r, out, fields, "nominations.html", "Nominations", "nominations")
}

func (s *server) handleVotePage(w http.ResponseWriter, r *http.Request) {
	page := projections.QueryVotePage(r.Context(), visitor(r), s.formPageDeps())
	s.render(w, r, http.StatusOK, "vote.html", "Vote", "vote",
		formPageData{Banner: page.Banner, Disabled: page.Disabled})
}

func (s *server) handleVoteSubmit(w http.ResponseWriter, r *http.Request) {
	fields, ok := parseFields(w, r)
	if !ok {
		return
	}
	out := orchestrators.ExecuteSubmitVote(r.Context(),
		orchestrators.SubmitVoteInput{Visitor: visitor(r), Fields: fields},
		orchestrators.SubmitVoteDeps{
			Store:      s.deps.Submissions,
			Lock:       s.deps.VoteLock,
			Status:     s.deps.Status,
			Notifier:   s.deps.Notifier,
			GenerateID: s.deps.GenerateID,
			Now:        s.deps.Now,
		},
	)
	s.respond(w, r, out, fields, "vote.html", "Vote", "vote")
}
