package domain

// IssueCode identifies one compatibility finding.
type IssueCode string

const (
	CodeInsufficientCapacity     IssueCode = "INSUFFICIENT_CAPACITY"
	CodeIncompatibleFuelBlend    IssueCode = "INCOMPATIBLE_FUEL_BLEND"
	CodeEmirateNotCovered        IssueCode = "EMIRATE_NOT_COVERED"
	CodeIncompatibleDeliveryType IssueCode = "INCOMPATIBLE_DELIVERY_TYPE"
	CodeTankerNotActive          IssueCode = "TANKER_NOT_ACTIVE"
	CodeTankerNotFound           IssueCode = "TANKER_NOT_FOUND"
	CodeCustomerNotFound         IssueCode = "CUSTOMER_NOT_FOUND"
)

type ValidationIssue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field"`
}

// ValidationResult lists blocking errors and non-blocking warnings.
// IsValid is true iff Errors is empty.
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

func (r *ValidationResult) AddError(code IssueCode, field, msg string) {
	r.Errors = append(r.Errors, ValidationIssue{Code: code, Message: msg, Field: field})
	r.IsValid = false
}

func (r *ValidationResult) AddWarning(code IssueCode, field, msg string) {
	r.Warnings = append(r.Warnings, ValidationIssue{Code: code, Message: msg, Field: field})
}

func (r *ValidationResult) HasError(code IssueCode) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// NewValidationResult starts a passing result with empty, non-nil lists.
func NewValidationResult() ValidationResult {
	return ValidationResult{IsValid: true, Errors: []ValidationIssue{}, Warnings: []ValidationIssue{}}
}
