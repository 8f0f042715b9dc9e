package handler

// ScanResultResponse represents the outcome of a settlement scan in API responses
type ScanResultResponse struct {
	Kind      string                      `json:"kind"`
	Attempted int                         `json:"attempted"`
	Succeeded []string                    `json:"succeeded"`
	Skipped   []string                    `json:"skipped,omitempty"`
	Failed    []SettlementFailureResponse `json:"failed,omitempty"`
}

// SettlementFailureResponse represents a single failed settlement in API responses
type SettlementFailureResponse struct {
	DecisionID string `json:"decision_id"`
	ErrorKind  string `json:"error_kind"`
	Reason     string `json:"reason"`
}

// DecisionResponse represents a pending decision in API responses
type DecisionResponse struct {
	ID             string `json:"id"`
	GroupID        string `json:"group_id"`
	Kind           string `json:"kind"`
	PayloadAddress string `json:"payload_address"`
	Status         string `json:"status"`
	Description    string `json:"description,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID                 string `json:"id"`
	GroupID            string `json:"group_id"`
	BorrowerID         string `json:"borrower_id"`
	Principal          string `json:"principal"`
	InterestRate       string `json:"interest_rate"`
	TermMonths         int    `json:"term_months"`
	OpeningBalance     string `json:"opening_balance"`
	OutstandingBalance string `json:"outstanding_balance"`
	MonthlyPayment     string `json:"monthly_payment"`
	AmountRepaid       string `json:"amount_repaid"`
	Status             string `json:"status"`
	Purpose            string `json:"purpose,omitempty"`
	ActivatedAt        string `json:"activated_at,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// RepaymentResponse represents a loan repayment in API responses
type RepaymentResponse struct {
	ID          string `json:"id"`
	LoanID      string `json:"loan_id"`
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	Reference   string `json:"reference,omitempty"`
	RecordedBy  string `json:"recorded_by"`
	CreatedAt   string `json:"created_at"`
}

// TreasuryResponse represents a group's running treasury total in API responses
type TreasuryResponse struct {
	GroupID string `json:"group_id"`
	Total   string `json:"total"`
}

// ListParams represents list size parameters for pending decision endpoints
type ListParams struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}
