package gating

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// Router mounts the gating surface as a JSON API:
//
//	GET  /limits/{resource}  read-only limit check
//	POST /usage/{resource}   check, perform, commit in one request
//	GET  /usage              all resource usage for the caller
//
// Anything beyond this thin surface (dashboards, rendering, billing pages)
// belongs to the callers of the core.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Get("/limits/{resource}", handleCheck(svc))
	r.Post("/usage/{resource}", handleCommit(svc))
	r.Get("/usage", handleUsage(svc))

	return r
}

func handleCheck(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := resourceParam(r)
		if !ok {
			respondError(w, http.StatusNotFound, "unknown resource")
			return
		}

		customer := svc.ResolveIdentity(r.Context())
		result, err := svc.CheckLimit(r.Context(), customer, res)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleCommit(svc *Service) http.HandlerFunc {
	type response struct {
		Record any `json:"record"`
		Signal any `json:"upgrade_signal,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := resourceParam(r)
		if !ok {
			respondError(w, http.StatusNotFound, "unknown resource")
			return
		}

		ctx := r.Context()
		customer := svc.ResolveIdentity(ctx)

		result, err := svc.CheckLimit(ctx, customer, res)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !result.Allowed {
			// Denials are structured results, not errors: the body carries
			// everything an upgrade prompt needs.
			respondJSON(w, http.StatusPaymentRequired, result)
			return
		}

		rec, signal, err := svc.CommitUsage(ctx, customer, res)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := response{Record: rec}
		if signal != nil {
			out.Signal = signal
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func handleUsage(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer := svc.ResolveIdentity(r.Context())
		all, err := svc.Usage(r.Context(), customer)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, all)
	}
}

func resourceParam(r *http.Request) (plan.Resource, bool) {
	res := plan.Resource(chi.URLParam(r, "resource"))
	return res, res.Valid()
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
