// ABOUTME: Wire types for the Genie conversation and statement-execution APIs
// ABOUTME: Only the fields the relay reads are mapped

package genie

// Message statuses reported by the API. A message is done when it reaches a
// terminal status; anything else means the backend is still working.
const (
	StatusCompleted          = "COMPLETED"
	StatusFailed             = "FAILED"
	StatusCancelled          = "CANCELLED"
	StatusQueryResultExpired = "QUERY_RESULT_EXPIRED"
)

// Message is one turn of a Genie conversation.
type Message struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	Content        string       `json:"content"`
	Status         string       `json:"status"`
	Attachments    []Attachment `json:"attachments"`
	QueryResult    *QueryResult `json:"query_result"`
}

// Attachment is a message sub-part carrying either free text or a query
// reference.
type Attachment struct {
	ID    string           `json:"attachment_id"`
	Text  *TextAttachment  `json:"text"`
	Query *QueryAttachment `json:"query"`
}

// TextAttachment carries free-form response text.
type TextAttachment struct {
	Content string `json:"content"`
}

// QueryAttachment describes the SQL query Genie generated for the question.
type QueryAttachment struct {
	Description string `json:"description"`
	Query       string `json:"query"`
	StatementID string `json:"statement_id"`
}

// QueryResult marks a message as having an attached query execution.
type QueryResult struct {
	StatementID string `json:"statement_id"`
}

// StatementResponse is the statement-execution result: column schema plus row
// data.
type StatementResponse struct {
	StatementID string           `json:"statement_id"`
	Status      *StatementStatus `json:"status"`
	Manifest    *ResultManifest  `json:"manifest"`
	Result      *ResultData      `json:"result"`
}

// StatementStatus reports the execution state of a statement.
type StatementStatus struct {
	State string `json:"state"`
}

// ResultManifest describes the shape of a statement result.
type ResultManifest struct {
	Schema ResultSchema `json:"schema"`
}

// ResultSchema is the ordered column schema of a statement result.
type ResultSchema struct {
	Columns []SchemaColumn `json:"columns"`
}

// SchemaColumn is one column of a statement result schema.
type SchemaColumn struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name"`
}

// ResultData holds the row data of a statement result.
type ResultData struct {
	DataArray [][]any `json:"data_array"`
}

// isTerminal reports whether a message status means the backend is done with
// this turn.
func isTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusQueryResultExpired:
		return true
	}
	return false
}
