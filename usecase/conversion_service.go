package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/internal/metrics"
	"github.com/satriahrh/isyarat/internal/sign"
)

// Conversion is the outcome of turning user text into sign frames
type Conversion struct {
	SourceText        string           `json:"source_text"`
	SourceLang        string           `json:"source_lang"`
	EnglishText       string           `json:"english_text"`
	Frames            []entities.Frame `json:"frames"`
	TranslationFailed bool             `json:"translation_failed"`
	Notice            string           `json:"notice,omitempty"`
}

// Translator is the part of TranslationService conversions depend on
type Translator interface {
	Translate(ctx context.Context, req entities.TranslationRequest) (entities.TranslationResult, error)
}

// PlaybackTarget is a frame player that a new conversion replaces
type PlaybackTarget interface {
	Stop()
	Load(frames []entities.Frame)
}

// ConversionService translates text to English and tokenizes it into frames
type ConversionService struct {
	translator Translator
	tokenizer  *sign.Tokenizer
	logger     *zap.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(translator Translator, tokenizer *sign.Tokenizer, logger *zap.Logger) *ConversionService {
	return &ConversionService{
		translator: translator,
		tokenizer:  tokenizer,
		logger:     logger,
	}
}

// Convert turns text in sourceLang into frames. Blank text fails with
// ErrEmptyInput before any provider is called. A failed translation does
// not fail the conversion: the original text is tokenized instead and the
// result is flagged with TranslationFailed.
func (s *ConversionService) Convert(ctx context.Context, text, sourceLang string) (Conversion, error) {
	req := entities.TranslationRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: entities.EnglishLanguage,
	}.WithDefaults()
	if err := req.Validate(); err != nil {
		return Conversion{}, err
	}

	conversion := Conversion{
		SourceText: text,
		SourceLang: req.SourceLang,
	}

	result, err := s.translator.Translate(ctx, req)
	if err != nil {
		s.logger.Warn("Translation failed, converting source text as English",
			zap.String("source", req.SourceLang),
			zap.Error(err))
		conversion.EnglishText = strings.TrimSpace(text)
		conversion.TranslationFailed = true
		conversion.Notice = entities.PublicMessage(entities.ErrTranslationUnavailable)
	} else {
		conversion.EnglishText = result.TranslatedText
	}

	conversion.Frames = s.Frames(conversion.EnglishText)
	metrics.ObserveConversion(conversion.TranslationFailed)

	s.logger.Info("Conversion completed",
		zap.String("source", req.SourceLang),
		zap.Int("frames", len(conversion.Frames)),
		zap.Bool("translationFailed", conversion.TranslationFailed))

	return conversion, nil
}

// Frames tokenizes English text without translating it
func (s *ConversionService) Frames(english string) []entities.Frame {
	return s.tokenizer.Frames(english)
}

// Apply stops target, converts text and loads the new frames into target
// with its position rewound to the first frame. On error target is left
// stopped with its previous frames.
func (s *ConversionService) Apply(ctx context.Context, target PlaybackTarget, text, sourceLang string) (Conversion, error) {
	if strings.TrimSpace(text) == "" {
		return Conversion{}, entities.ErrEmptyInput
	}

	target.Stop()

	conversion, err := s.Convert(ctx, text, sourceLang)
	if err != nil {
		return Conversion{}, err
	}

	target.Load(conversion.Frames)
	return conversion, nil
}
