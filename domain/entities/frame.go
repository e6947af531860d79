package entities

// FrameKind identifies what a presentation frame shows
type FrameKind string

const (
	FrameKindWord   FrameKind = "word"
	FrameKindLetter FrameKind = "letter"
	FrameKindSpacer FrameKind = "spacer"
)

const (
	// SpacerLabel marks the boundary after a fingerspelled word
	SpacerLabel = "•"
	// PlaceholderLabel is shown when nothing survives normalization
	PlaceholderLabel = "…"
)

// Frame is one discrete unit of sign presentation
type Frame struct {
	Kind  FrameKind `json:"kind"`
	Label string    `json:"label"`
}

// WordFrame builds a frame for a recognized vocabulary word
func WordFrame(label string) Frame {
	return Frame{Kind: FrameKindWord, Label: label}
}

// LetterFrame builds a fingerspelling frame
func LetterFrame(label string) Frame {
	return Frame{Kind: FrameKindLetter, Label: label}
}

// SpacerFrame builds a word-boundary frame
func SpacerFrame() Frame {
	return Frame{Kind: FrameKindSpacer, Label: SpacerLabel}
}

// PlaceholderFrame builds the empty-input sentinel
func PlaceholderFrame() Frame {
	return Frame{Kind: FrameKindSpacer, Label: PlaceholderLabel}
}

// IsPlaceholder reports whether the frame is the empty-input sentinel
func (f Frame) IsPlaceholder() bool {
	return f.Kind == FrameKindSpacer && f.Label == PlaceholderLabel
}
