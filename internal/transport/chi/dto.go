package chi

// errorCode is a machine-readable error class for API clients.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeTypeNotRegistered errorCode = "type_not_registered"
	codeRecordNotFound    errorCode = "record_not_found"
	codeNotImplemented    errorCode = "not_implemented"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type fieldDefinition struct {
	Name      string            `json:"name"`
	Kind      string            `json:"kind"`
	SubFields []fieldDefinition `json:"sub_fields,omitempty"`
}

type typeRequest struct {
	Label  string            `json:"label"`
	Parent string            `json:"parent,omitempty"`
	Fields []fieldDefinition `json:"fields"`
}

type typeResponse struct {
	Label      string `json:"label"`
	Parent     string `json:"parent,omitempty"`
	IndexLabel string `json:"index_label"`
}

type recordRequest struct {
	Values map[string]any `json:"values"`
}

type recordResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type bulkRecordItem struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

type bulkRecordRequest struct {
	Records []bulkRecordItem `json:"records"`
}

type bulkRecordResponse struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type searchRequest struct {
	Query      string `json:"query"`
	Type       string `json:"type"`
	Offset     int    `json:"offset,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	PlainOrder bool   `json:"plain_order,omitempty"`
}

type searchResultItem struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Values map[string]any `json:"values,omitempty"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
