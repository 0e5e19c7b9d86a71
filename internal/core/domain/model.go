package domain

type InteractionKind string

const (
	KindComponent   InteractionKind = "component"
	KindModalSubmit InteractionKind = "modal_submit"
)

// Interaction is the transport-agnostic view of a single incoming
// component press or modal submission.
type Interaction struct {
	ID        string
	Token     string
	Kind      InteractionKind
	CustomID  string
	UserID    string
	ChannelID string
	GuildID   string
	MessageID string
	Fields    []Field
}

type FieldType int

// Field types mirror the platform's component type identifiers.
const (
	FieldTypeText FieldType = 4
)

// Field is one entry of a modal submission's structured payload.
type Field struct {
	CustomID string
	Type     FieldType
	Value    string
}

type ResponseKind int

const (
	ResponseMessageCreate ResponseKind = iota + 1
	ResponseMessageUpdate
	ResponseDeferredMessageCreate
	ResponseDeferredMessageUpdate
	ResponseModal
)

// IsDeferral reports whether the kind commits the interaction to a
// deferred envelope.
func (k ResponseKind) IsDeferral() bool {
	return k == ResponseDeferredMessageCreate || k == ResponseDeferredMessageUpdate
}

// Response is the payload of an interaction response or followup.
type Response struct {
	Kind      ResponseKind
	Content   string
	Ephemeral bool
	TTS       bool
	// Title and CustomID are only used for ResponseModal.
	Title      string
	CustomID   string
	Components []ActionRow
}

// Message identifies a platform message created or edited by a response.
type Message struct {
	ID        string
	ChannelID string
	Content   string
}

type ActionRow struct {
	Buttons    []Button
	TextInputs []TextInput
}

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
	ButtonLink
)

type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
	Disabled bool
	URL      string
}

type TextInputStyle int

const (
	TextInputShort TextInputStyle = iota + 1
	TextInputParagraph
)

type TextInput struct {
	CustomID    string
	Label       string
	Style       TextInputStyle
	Placeholder string
	Value       string
	Required    bool
	MinLength   int
	MaxLength   int
}
