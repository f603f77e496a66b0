package webhook

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Webhook method names delivered by the exchange.
const (
	MethodCodeApply           = "code.apply"
	MethodDepositAccepted     = "deposit.accepted"
	MethodDepositUpdated      = "deposit.updated"
	MethodDepositProcessed    = "deposit.processed"
	MethodDepositCanceled     = "deposit.canceled"
	MethodWithdrawUnconfirmed = "withdraw.unconfirmed"
	MethodWithdrawPending     = "withdraw.pending"
	MethodWithdrawCanceled    = "withdraw.canceled"
	MethodWithdrawSuccessful  = "withdraw.successful"
)

// Transaction method discriminator inside TransactionParams.
const (
	TransactionMethodDeposit  = 1
	TransactionMethodWithdraw = 2
)

// Request is one decoded webhook delivery. Params stays raw until the
// method is known; the typed accessors decode it on demand.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// CodeApplyParams decodes Params for the code.apply method.
func (r *Request) CodeApplyParams() (*CodeApplyParams, error) {
	var params CodeApplyParams
	if err := sonic.Unmarshal(r.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// TransactionParams decodes Params for the deposit.* and withdraw.*
// methods.
func (r *Request) TransactionParams() (*TransactionParams, error) {
	var params TransactionParams
	if err := sonic.Unmarshal(r.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// CodeApplyParams carries the applied WhiteBIT code.
type CodeApplyParams struct {
	Code  string `json:"code"`
	Nonce int64  `json:"nonce,omitempty"`
}

// ConfirmationsInfo tracks block confirmations of a transaction.
type ConfirmationsInfo struct {
	Actual   int `json:"actual"`
	Required int `json:"required"`
}

// TransactionParams carries a deposit or withdraw transaction. Method is
// 1 for deposits and 2 for withdrawals when the exchange sets it.
type TransactionParams struct {
	Address         string             `json:"address"`
	Amount          string             `json:"amount"`
	CreatedAt       int64              `json:"createdAt"`
	Currency        string             `json:"currency"`
	Description     string             `json:"description,omitempty"`
	Fee             string             `json:"fee"`
	Memo            string             `json:"memo,omitempty"`
	Method          int                `json:"method,omitempty"`
	Network         string             `json:"network,omitempty"`
	Nonce           int64              `json:"nonce,omitempty"`
	Status          int                `json:"status,omitempty"`
	Ticker          string             `json:"ticker"`
	TransactionHash string             `json:"transactionHash"`
	UniqueID        string             `json:"uniqueId,omitempty"`
	Confirmations   *ConfirmationsInfo `json:"confirmations,omitempty"`
}
