package types

import (
	"errors"
	"fmt"
)

// ACStatusCode is the verdict of admission control.
type ACStatusCode int

const (
	// ACAccepted means the transaction was admitted into the mempool.
	ACAccepted ACStatusCode = iota
	// ACBlacklisted means the sender is not allowed to submit.
	ACBlacklisted
	// ACRejected means admission control refused the transaction.
	ACRejected
)

// String returns the name of the status code.
func (c ACStatusCode) String() string {
	switch c {
	case ACAccepted:
		return "Accepted"
	case ACBlacklisted:
		return "Blacklisted"
	case ACRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("ACStatusCode(%d)", int(c))
	}
}

// AdmissionControlStatus is the admission-control part of a response.
type AdmissionControlStatus struct {
	Code    ACStatusCode
	Message string
}

// VMStatusKind is the layer of the VM that produced a status.
type VMStatusKind int

const (
	// VMValidation statuses come from transaction validation.
	VMValidation VMStatusKind = iota
	// VMExecution statuses come from running the program.
	VMExecution
)

// VMStatusCode details a VM status.
type VMStatusCode int

const (
	// VMInvalidSignature means the signature did not verify.
	VMInvalidSignature VMStatusCode = iota
	// VMInvalidAuthKey means the public key does not belong to the sender.
	VMInvalidAuthKey
	// VMSequenceNumberTooOld means the sequence number was already used.
	VMSequenceNumberTooOld
	// VMSendingAccountDoesNotExist means the sender has no state.
	VMSendingAccountDoesNotExist
	// VMTransactionExpired means the expiration time is in the past.
	VMTransactionExpired
	// VMMalformedTransaction means the transaction bytes did not decode.
	VMMalformedTransaction
)

var vmStatusCodes = []string{
	"InvalidSignature",
	"InvalidAuthKey",
	"SequenceNumberTooOld",
	"SendingAccountDoesNotExist",
	"TransactionExpired",
	"MalformedTransaction",
}

// String returns the name of the code.
func (c VMStatusCode) String() string {
	if int(c) < 0 || int(c) >= len(vmStatusCodes) {
		return fmt.Sprintf("VMStatusCode(%d)", int(c))
	}
	return vmStatusCodes[c]
}

// VMStatus is the VM part of a response.
type VMStatus struct {
	Kind VMStatusKind
	Code VMStatusCode
}

// String renders the status as Kind(Code), e.g. Validation(InvalidSignature).
func (s VMStatus) String() string {
	kind := "Validation"
	if s.Kind == VMExecution {
		kind = "Execution"
	}
	return fmt.Sprintf("%s(%s)", kind, s.Code)
}

// MempoolStatusCode is the verdict of the mempool.
type MempoolStatusCode int

const (
	// MempoolValid means the mempool took the transaction.
	MempoolValid MempoolStatusCode = iota
	// MempoolInsufficientBalance means the sender cannot pay.
	MempoolInsufficientBalance
	// MempoolInvalidSeqNumber means the sequence number is out of range.
	MempoolInvalidSeqNumber
	// MempoolIsFull means the mempool reached capacity.
	MempoolIsFull
	// MempoolTooManyTransactions means the sender has too many pending
	// transactions.
	MempoolTooManyTransactions
	// MempoolInvalidUpdate means a transaction with the same sender and
	// sequence number is already pending.
	MempoolInvalidUpdate
)

var mempoolStatusCodes = []string{
	"Valid",
	"InsufficientBalance",
	"InvalidSeqNumber",
	"MempoolIsFull",
	"TooManyTransactions",
	"InvalidUpdate",
}

// String returns the name of the code.
func (c MempoolStatusCode) String() string {
	if int(c) < 0 || int(c) >= len(mempoolStatusCodes) {
		return fmt.Sprintf("MempoolStatusCode(%d)", int(c))
	}
	return mempoolStatusCodes[c]
}

// MempoolAddTransactionStatus is the mempool part of a response.
type MempoolAddTransactionStatus struct {
	Code    MempoolStatusCode
	Message string
}

// ErrNoSignedTransaction is returned when a submit request carries nothing.
var ErrNoSignedTransaction = errors.New("submit request has no signed transaction")

// SubmitTransactionRequest carries one signed transaction.
type SubmitTransactionRequest struct {
	SignedTxn *SignedTransaction
}

// Validate checks the request can be sent.
func (r *SubmitTransactionRequest) Validate() error {
	if r == nil || r.SignedTxn == nil {
		return ErrNoSignedTransaction
	}
	return nil
}

// SubmitTransactionResponse carries at most one of ACStatus, VMStatus and
// MempoolStatus.
type SubmitTransactionResponse struct {
	ACStatus      *AdmissionControlStatus
	VMStatus      *VMStatus
	MempoolStatus *MempoolAddTransactionStatus
	ValidatorID   []byte
}

// HasACStatus reports whether the admission-control status is set.
func (r *SubmitTransactionResponse) HasACStatus() bool {
	return r.ACStatus != nil
}

// HasVMStatus reports whether the VM status is set.
func (r *SubmitTransactionResponse) HasVMStatus() bool {
	return r.VMStatus != nil
}

// HasMempoolStatus reports whether the mempool status is set.
func (r *SubmitTransactionResponse) HasMempoolStatus() bool {
	return r.MempoolStatus != nil
}

// String is used in logs.
func (r *SubmitTransactionResponse) String() string {
	switch {
	case r.HasACStatus():
		return fmt.Sprintf("ACStatus{%s %q}", r.ACStatus.Code, r.ACStatus.Message)
	case r.HasVMStatus():
		return fmt.Sprintf("VMStatus{%s}", r.VMStatus)
	case r.HasMempoolStatus():
		return fmt.Sprintf("MempoolStatus{%s %q}", r.MempoolStatus.Code, r.MempoolStatus.Message)
	default:
		return "SubmitTransactionResponse{}"
	}
}

// NewACResponse builds a response holding an admission-control status.
func NewACResponse(code ACStatusCode, msg string) *SubmitTransactionResponse {
	return &SubmitTransactionResponse{ACStatus: &AdmissionControlStatus{Code: code, Message: msg}}
}

// NewVMResponse builds a response holding a VM validation status.
func NewVMResponse(code VMStatusCode) *SubmitTransactionResponse {
	return &SubmitTransactionResponse{VMStatus: &VMStatus{Kind: VMValidation, Code: code}}
}

// NewMempoolResponse builds a response holding a mempool status.
func NewMempoolResponse(code MempoolStatusCode, msg string) *SubmitTransactionResponse {
	return &SubmitTransactionResponse{MempoolStatus: &MempoolAddTransactionStatus{Code: code, Message: msg}}
}
