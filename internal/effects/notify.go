package effects

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/ledger-service/internal/repository"
)

const SignatureHeader = "X-Signature"

type notification struct {
	Event         string `json:"event"`
	TransactionID int64  `json:"transaction_id"`
	UserID        int64  `json:"user_id"`
}

// Notifier posts a signed "transaction.created" event to a webhook. With no
// URL configured it does nothing.
type Notifier struct {
	txns   repository.Transactions
	url    string
	secret []byte
	client *http.Client
	log    *slog.Logger
}

func NewNotifier(t repository.Transactions, url, secret string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		txns:   t,
		url:    url,
		secret: []byte(secret),
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

func (*Notifier) Name() string { return "send-notification" }

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret, body []byte) string {
	m := hmac.New(sha256.New, secret)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}

func (n *Notifier) Run(ctx context.Context, txnID int64) error {
	if n.url == "" {
		n.log.Debug("notification skipped, no webhook configured", "transaction_id", txnID)
		return nil
	}
	tx, err := n.txns.GetByID(ctx, txnID)
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", txnID, err)
	}

	body, err := json.Marshal(notification{Event: "transaction.created", TransactionID: tx.ID, UserID: tx.UserID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(n.secret, body))

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
