// Package handler exposes the pipelines over HTTP. Each route runs one
// pipeline synchronously, records its metrics, and leaves an audit event.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/polibase/polibase/internal/election/importer"
	"github.com/polibase/polibase/internal/election/linker"
	"github.com/polibase/polibase/internal/election/metrics"
	"github.com/polibase/polibase/internal/election/tenure"
	"github.com/polibase/polibase/pkg/platform/audit"
	"github.com/polibase/polibase/pkg/platform/httputil"
	"github.com/polibase/polibase/pkg/requestcontext"
)

// Pipeline interfaces let tests swap in stubs for failure paths.
type (
	GeneralPipeline interface {
		Execute(ctx context.Context, input importer.GeneralInput) (*importer.GeneralResult, error)
	}
	CouncillorsPipeline interface {
		Execute(ctx context.Context, input importer.CouncillorsInput) (*importer.CouncillorsResult, error)
	}
	ProportionalPipeline interface {
		Execute(ctx context.Context, input importer.ProportionalInput) (*importer.ProportionalResult, error)
	}
	GroupLinker interface {
		Execute(ctx context.Context, input linker.Input) (*linker.Result, error)
	}
	TenurePopulator interface {
		Execute(ctx context.Context, input tenure.Input) (*tenure.Result, error)
	}
)

// Handler wires pipeline endpoints to their implementations.
type Handler struct {
	general      GeneralPipeline
	councillors  CouncillorsPipeline
	proportional ProportionalPipeline
	linker       GroupLinker
	populator    TenurePopulator
	auditLog     audit.Store
	publisher    *audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// New constructs the election handler with its dependencies.
func New(
	general GeneralPipeline,
	councillors CouncillorsPipeline,
	proportional ProportionalPipeline,
	groupLinker GroupLinker,
	populator TenurePopulator,
	auditLog audit.Store,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		general:      general,
		councillors:  councillors,
		proportional: proportional,
		linker:       groupLinker,
		populator:    populator,
		auditLog:     auditLog,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// Register mounts the pipeline endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/imports/general", h.HandleGeneralImport)
	r.Post("/imports/councillors", h.HandleCouncillorsImport)
	r.Post("/imports/proportional", h.HandleProportionalImport)
	r.Post("/linkage/parliamentary-groups", h.HandleLinkage)
	r.Post("/tenure/populate", h.HandleTenurePopulate)
	r.Get("/audit/events", h.HandleAuditEvents)
}

// HandleGeneralImport handles POST /imports/general.
func (h *Handler) HandleGeneralImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.DecodeJSON[GeneralImportRequest](w, r)
	if !ok {
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteBadRequest(w, msg)
		return
	}

	result, err := h.general.Execute(ctx, importer.GeneralInput{
		ElectionNumber:  req.ElectionNumber,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
	})
	if err != nil {
		h.failRun(ctx, w, "general", audit.ActionGeneralImport, req.ElectionNumber, req.GoverningBodyID, req.DryRun, start, err)
		return
	}

	h.metrics.ObserveRun("general", "success", start)
	h.metrics.RecordImport("general", result.CreatedPoliticians, result.MembersCreated, result.SkippedAmbiguous, result.SkippedDuplicate)
	h.publisher.Emit(ctx, audit.Event{
		Action:          audit.ActionGeneralImport,
		Outcome:         audit.OutcomeCompleted,
		TermNumber:      req.ElectionNumber,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
		Summary: map[string]int{
			"total_candidates":         result.TotalCandidates,
			"matched_politicians":      result.MatchedPoliticians,
			"created_politicians":      result.CreatedPoliticians,
			"created_parties":          result.CreatedParties,
			"skipped_ambiguous":        result.SkippedAmbiguous,
			"skipped_duplicate":        result.SkippedDuplicate,
			"election_members_created": result.MembersCreated,
			"errors":                   result.Errors,
		},
	})

	h.logger.InfoContext(ctx, "general import finished",
		"request_id", requestcontext.RequestID(ctx),
		"election_number", req.ElectionNumber,
		"members_created", result.MembersCreated,
		"errors", result.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleCouncillorsImport handles POST /imports/councillors.
func (h *Handler) HandleCouncillorsImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.DecodeJSON[CouncillorsImportRequest](w, r)
	if !ok {
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteBadRequest(w, msg)
		return
	}

	result, err := h.councillors.Execute(ctx, importer.CouncillorsInput{
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
	})
	if err != nil {
		h.failRun(ctx, w, "councillors", audit.ActionCouncillorsImport, 0, req.GoverningBodyID, req.DryRun, start, err)
		return
	}

	h.metrics.ObserveRun("councillors", "success", start)
	h.metrics.RecordImport("councillors", result.CreatedPoliticians, result.MembersCreated, result.SkippedAmbiguous, result.SkippedDuplicate)
	h.publisher.Emit(ctx, audit.Event{
		Action:          audit.ActionCouncillorsImport,
		Outcome:         audit.OutcomeCompleted,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
		Summary: map[string]int{
			"total_councillors":        result.TotalCouncillors,
			"elections_created":        result.ElectionsCreated,
			"matched_politicians":      result.MatchedPoliticians,
			"created_politicians":      result.CreatedPoliticians,
			"created_parties":          result.CreatedParties,
			"skipped_ambiguous":        result.SkippedAmbiguous,
			"skipped_duplicate":        result.SkippedDuplicate,
			"election_members_created": result.MembersCreated,
			"errors":                   result.Errors,
		},
	})

	h.logger.InfoContext(ctx, "councillors import finished",
		"request_id", requestcontext.RequestID(ctx),
		"members_created", result.MembersCreated,
		"errors", result.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleProportionalImport handles POST /imports/proportional.
func (h *Handler) HandleProportionalImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.DecodeJSON[ProportionalImportRequest](w, r)
	if !ok {
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteBadRequest(w, msg)
		return
	}

	result, err := h.proportional.Execute(ctx, importer.ProportionalInput{
		ElectionNumber:  req.ElectionNumber,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
	})
	if err != nil {
		h.failRun(ctx, w, "proportional", audit.ActionProportionalImport, req.ElectionNumber, req.GoverningBodyID, req.DryRun, start, err)
		return
	}

	h.metrics.ObserveRun("proportional", "success", start)
	h.metrics.RecordImport("proportional", result.CreatedPoliticians, result.MembersCreated, result.SkippedAmbiguous, result.SkippedDuplicate)
	h.publisher.Emit(ctx, audit.Event{
		Action:          audit.ActionProportionalImport,
		Outcome:         audit.OutcomeCompleted,
		TermNumber:      req.ElectionNumber,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
		Summary: map[string]int{
			"total_candidates":         result.TotalCandidates,
			"elected_candidates":       result.ElectedCandidates,
			"proportional_elected":     result.ProportionalElected,
			"proportional_revival":     result.ProportionalRevival,
			"skipped_smd_winner":       result.SkippedSMDWinner,
			"skipped_ambiguous":        result.SkippedAmbiguous,
			"skipped_duplicate":        result.SkippedDuplicate,
			"election_members_created": result.MembersCreated,
			"errors":                   result.Errors,
		},
	})

	h.logger.InfoContext(ctx, "proportional import finished",
		"request_id", requestcontext.RequestID(ctx),
		"election_number", req.ElectionNumber,
		"members_created", result.MembersCreated,
		"errors", result.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleLinkage handles POST /linkage/parliamentary-groups.
func (h *Handler) HandleLinkage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.DecodeJSON[LinkageRequest](w, r)
	if !ok {
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteBadRequest(w, msg)
		return
	}

	result, err := h.linker.Execute(ctx, linker.Input{
		TermNumber:      req.TermNumber,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
	})
	if err != nil {
		h.failRun(ctx, w, "linkage", audit.ActionGroupLinkage, req.TermNumber, req.GoverningBodyID, req.DryRun, start, err)
		return
	}

	h.metrics.ObserveRun("linkage", "success", start)
	h.metrics.MembersCreated.WithLabelValues("linkage").Add(float64(result.LinkedCount))
	h.metrics.Skips.WithLabelValues("linkage", "no_party").Add(float64(result.SkippedNoParty))
	h.metrics.Skips.WithLabelValues("linkage", "no_group").Add(float64(result.SkippedNoGroup))
	h.metrics.Skips.WithLabelValues("linkage", "multiple_groups").Add(float64(result.SkippedMultipleGroups))
	h.publisher.Emit(ctx, audit.Event{
		Action:          audit.ActionGroupLinkage,
		Outcome:         audit.OutcomeCompleted,
		TermNumber:      req.TermNumber,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
		Summary: map[string]int{
			"total_elected":           result.TotalElected,
			"linked_count":            result.LinkedCount,
			"already_existed_count":   result.AlreadyExistedCount,
			"skipped_no_party":        result.SkippedNoParty,
			"skipped_no_group":        result.SkippedNoGroup,
			"skipped_multiple_groups": result.SkippedMultipleGroups,
			"errors":                  result.Errors,
		},
	})

	h.logger.InfoContext(ctx, "group linkage finished",
		"request_id", requestcontext.RequestID(ctx),
		"term_number", req.TermNumber,
		"linked", result.LinkedCount,
		"errors", result.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleTenurePopulate handles POST /tenure/populate.
func (h *Handler) HandleTenurePopulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.DecodeJSON[TenureRequest](w, r)
	if !ok {
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteBadRequest(w, msg)
		return
	}

	result, err := h.populator.Execute(ctx, tenure.Input{
		TermNumber:      req.TermNumber,
		GoverningBodyID: req.GoverningBodyID,
		ConferenceName:  req.ConferenceName,
		DryRun:          req.DryRun,
	})
	if err != nil {
		h.failRun(ctx, w, "tenure", audit.ActionTenurePopulation, req.TermNumber, req.GoverningBodyID, req.DryRun, start, err)
		return
	}

	h.metrics.ObserveRun("tenure", "success", start)
	h.metrics.MembersCreated.WithLabelValues("tenure").Add(float64(result.CreatedCount))
	h.publisher.Emit(ctx, audit.Event{
		Action:          audit.ActionTenurePopulation,
		Outcome:         audit.OutcomeCompleted,
		TermNumber:      req.TermNumber,
		GoverningBodyID: req.GoverningBodyID,
		DryRun:          req.DryRun,
		Summary: map[string]int{
			"total_elected":         result.TotalElected,
			"created_count":         result.CreatedCount,
			"already_existed_count": result.AlreadyExistedCount,
			"errors":                result.Errors,
		},
	})

	h.logger.InfoContext(ctx, "tenure population finished",
		"request_id", requestcontext.RequestID(ctx),
		"term_number", req.TermNumber,
		"created", result.CreatedCount,
		"errors", result.Errors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleAuditEvents handles GET /audit/events?limit=N.
func (h *Handler) HandleAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := h.auditLog.ListRecent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// failRun is the shared failure tail: metrics, audit, log, 5xx response.
func (h *Handler) failRun(ctx context.Context, w http.ResponseWriter, pipeline string, action audit.Action, term int, governingBodyID int64, dryRun bool, start time.Time, err error) {
	h.metrics.ObserveRun(pipeline, "error", start)
	h.publisher.Emit(ctx, audit.Event{
		Action:          action,
		Outcome:         audit.OutcomeFailed,
		TermNumber:      term,
		GoverningBodyID: governingBodyID,
		DryRun:          dryRun,
		Detail:          err.Error(),
	})
	h.logger.ErrorContext(ctx, "pipeline run failed",
		"request_id", requestcontext.RequestID(ctx),
		"pipeline", pipeline,
		"error", err,
	)
	httputil.WriteError(w, err)
}
