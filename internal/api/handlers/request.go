package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/baharkarakas/ledger-service/internal/api/validate"
	"github.com/baharkarakas/ledger-service/internal/models"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime accepts RFC 3339 as well as zone-less timestamps and bare dates,
// which are read as UTC.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", s)
}

type transactionReq struct {
	UserID            *int64    `json:"user_id"`
	FullName          *string   `json:"full_name"`
	TransactionDate   *flexTime `json:"transaction_date"`
	TransactionAmount *float64  `json:"transaction_amount"`
	TransactionType   *string   `json:"transaction_type"`
}

func decodeTransaction(body []byte) (models.TransactionInput, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var req transactionReq
	if err := dec.Decode(&req); err != nil {
		return models.TransactionInput{}, validate.Errs{{Field: "body", Msg: decodeMsg(err)}}
	}
	// exactly one JSON value per body
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return models.TransactionInput{}, validate.Errs{{Field: "body", Msg: "malformed JSON body"}}
	}

	checks := []*validate.ErrField{
		validate.Present("user_id", req.UserID != nil),
		validate.Present("full_name", req.FullName != nil),
		validate.Present("transaction_amount", req.TransactionAmount != nil),
		validate.Present("transaction_type", req.TransactionType != nil),
	}
	if req.UserID != nil {
		checks = append(checks, validate.MinInt("user_id", *req.UserID, 0))
	}
	if req.TransactionAmount != nil {
		checks = append(checks, validate.MinFloat("transaction_amount", *req.TransactionAmount, 0))
	}
	if req.TransactionType != nil {
		checks = append(checks, validate.Check("transaction_type",
			models.TransactionType(*req.TransactionType).Valid(), "must be credit or debit"))
	}
	if err := validate.Collect(checks...); err != nil {
		return models.TransactionInput{}, err
	}

	in := models.TransactionInput{
		UserID:            *req.UserID,
		FullName:          *req.FullName,
		TransactionAmount: *req.TransactionAmount,
		TransactionType:   models.TransactionType(*req.TransactionType),
	}
	if req.TransactionDate != nil {
		in.TransactionDate = req.TransactionDate.Time
	}
	return in, nil
}

// decodeMsg hides Go type names from clients.
func decodeMsg(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return fmt.Sprintf("%s has the wrong type", field)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return strings.TrimPrefix(err.Error(), "json: ")
	default:
		return "malformed JSON body"
	}
}
