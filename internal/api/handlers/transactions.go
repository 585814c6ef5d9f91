package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/ledger-service/internal/api/httpx"
	"github.com/baharkarakas/ledger-service/internal/api/validate"
	"github.com/baharkarakas/ledger-service/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 1000
	maxBodyBytes = 1 << 20
)

type TransactionService interface {
	List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
	Get(ctx context.Context, id int64) (models.Transaction, error)
	Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	Update(ctx context.Context, id int64, in models.TransactionInput) (models.Transaction, error)
	Delete(ctx context.Context, id int64) (models.Transaction, error)
}

type AnalyticsService interface {
	Snapshot(ctx context.Context, userID int64) ([]byte, error)
}

type TransactionHandler struct {
	txns      TransactionService
	analytics AnalyticsService
}

func NewTransactionHandler(t TransactionService, a AnalyticsService) *TransactionHandler {
	return &TransactionHandler{txns: t, analytics: a}
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	txns, err := h.txns.List(r.Context(), f)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txns)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	tx, err := h.txns.Get(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := readTransaction(r)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	tx, err := h.txns.Create(r.Context(), in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tx)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	in, err := readTransaction(r)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	tx, err := h.txns.Update(r.Context(), id, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	tx, err := h.txns.Delete(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	uid, err := pathID(r, "user_id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	raw, err := h.analytics.Snapshot(r.Context(), uid)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteRawJSON(w, http.StatusOK, raw)
}

// ----------------- Helpers -----------------

func readTransaction(r *http.Request) (models.TransactionInput, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return models.TransactionInput{}, err
	}
	if len(body) > maxBodyBytes {
		return models.TransactionInput{}, validate.Errs{{Field: "body", Msg: "too large"}}
	}
	return decodeTransaction(body)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, validate.Errs{{Field: name, Msg: "must be an integer"}}
	}
	return id, nil
}

func parseFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	f := models.TransactionFilter{Limit: defaultLimit}
	var errs validate.Errs

	queryInt := func(name string, dst *int64) bool {
		v := q.Get(name)
		if v == "" {
			return false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, validate.ErrField{Field: name, Msg: "must be an integer"})
			return false
		}
		*dst = n
		return true
	}

	var skip, limit, uid int64
	if queryInt("skip", &skip) {
		if e := validate.MinInt("skip", skip, 0); e != nil {
			errs = append(errs, *e)
		}
		f.Skip = int(skip)
	}
	if queryInt("limit", &limit) {
		if e := validate.Collect(validate.MinInt("limit", limit, 1), validate.MaxInt("limit", limit, maxLimit)); e != nil {
			errs = append(errs, e.(validate.Errs)...)
		}
		f.Limit = int(limit)
	}
	if queryInt("user_id", &uid) {
		f.UserID = &uid
	}

	if len(errs) > 0 {
		return models.TransactionFilter{}, errs
	}
	return f, nil
}
