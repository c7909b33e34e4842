package adsb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/pkg/flex"
)

// ParseStep records which stage of the fallback chain produced a batch.
type ParseStep int

const (
	// StepStrict means the whole body decoded into the expected shape and
	// every record normalized.
	StepStrict ParseStep = iota
	// StepPerRecord means records were decoded one at a time and failures dropped.
	StepPerRecord
	// StepSanitized means at least one record only decoded after oversized
	// integer literals were rewritten as strings.
	StepSanitized
)

func (s ParseStep) String() string {
	switch s {
	case StepStrict:
		return "strict"
	case StepPerRecord:
		return "per_record"
	case StepSanitized:
		return "sanitized"
	default:
		return "unknown"
	}
}

// Messages attached to batches that carry no aircraft.
const (
	MsgNoAircraft  = "No aircraft in range"
	MsgUndecodable = "No aircraft data could be decoded"
)

// Batch is one decoded API response.
type Batch struct {
	Aircraft []Aircraft

	// Server timestamps in milliseconds since the epoch
	Now   int64
	CTime int64
	PTime int64

	Msg   string
	Total int64

	// Dropped counts aircraft objects that could not be decoded.
	Dropped int

	Step ParseStep
}

// Malformed reports whether the server sent aircraft objects but none of
// them decoded, as opposed to correctly reporting an empty area.
func (b Batch) Malformed() bool {
	return len(b.Aircraft) == 0 && b.Dropped > 0
}

// wireBatch is the strict response shape.
type wireBatch struct {
	Aircraft []json.RawMessage `json:"ac"`
	CTime    int64             `json:"ctime"`
	Msg      string            `json:"msg"`
	Now      int64             `json:"now"`
	PTime    int64             `json:"ptime"`
	Total    int64             `json:"total"`
}

// Parser decodes response bodies through an ordered fallback chain:
// strict decode, then per-record decode, then per-record decode of records
// whose oversized integers have been rewritten as strings.
type Parser struct {
	normalizer *Normalizer
	logger     zerolog.Logger
}

// NewParser creates a parser. A nil normalizer selects default options.
func NewParser(normalizer *Normalizer, logger zerolog.Logger) *Parser {
	if normalizer == nil {
		normalizer = NewNormalizer(NormalizerOptions{})
	}
	return &Parser{normalizer: normalizer, logger: logger}
}

// ParseBatch decodes a response body. It only fails with ErrMalformedBatch
// when the body is not a JSON object or its "ac" field is not an array; a
// body whose aircraft all fail to decode yields an empty batch with Dropped
// set and Msg describing the problem.
func (p *Parser) ParseBatch(body []byte) (Batch, error) {
	if batch, ok := p.parseStrict(body); ok {
		return batch, nil
	}

	batch, err := p.parseLenient(body)
	if err != nil {
		return Batch{Msg: MsgUndecodable}, err
	}

	p.logger.Debug().
		Str("step", batch.Step.String()).
		Int("decoded", len(batch.Aircraft)).
		Int("dropped", batch.Dropped).
		Msg("Strict batch decode failed, used fallback")

	return batch, nil
}

func (p *Parser) parseStrict(body []byte) (Batch, bool) {
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return Batch{}, false
	}

	var wire wireBatch
	if err := json.Unmarshal(body, &wire); err != nil {
		return Batch{}, false
	}

	records := make([]Aircraft, 0, len(wire.Aircraft))
	for _, raw := range wire.Aircraft {
		ac, err := p.normalizer.Normalize(raw)
		if err != nil {
			return Batch{}, false
		}
		records = append(records, ac)
	}

	batch := Batch{
		Aircraft: records,
		Now:      wire.Now,
		CTime:    wire.CTime,
		PTime:    wire.PTime,
		Msg:      wire.Msg,
		Total:    wire.Total,
		Step:     StepStrict,
	}
	if len(records) == 0 && batch.Msg == "" {
		batch.Msg = MsgNoAircraft
	}
	return batch, true
}

func (p *Parser) parseLenient(body []byte) (Batch, error) {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(body, &generic); err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	if generic == nil {
		return Batch{}, fmt.Errorf("%w: body is null", ErrMalformedBatch)
	}

	batch := Batch{Step: StepPerRecord}
	batch.Now, _ = flex.Decode(generic["now"]).AsInt()
	batch.CTime, _ = flex.Decode(generic["ctime"]).AsInt()
	batch.PTime, _ = flex.Decode(generic["ptime"]).AsInt()
	batch.Msg = flex.Decode(generic["msg"]).Str()
	batch.Total, _ = flex.Decode(generic["total"]).AsInt()

	var elements []json.RawMessage
	if raw := bytes.TrimSpace(generic["ac"]); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &elements); err != nil {
			return Batch{}, fmt.Errorf("%w: ac is not an array: %v", ErrMalformedBatch, err)
		}
	}

	batch.Aircraft = make([]Aircraft, 0, len(elements))
	for _, raw := range elements {
		ac, err := p.normalizer.Normalize(raw)
		if errors.Is(err, ErrUnsafeInteger) {
			ac, err = p.normalizeSanitized(raw)
			if err == nil {
				batch.Step = StepSanitized
			}
		}
		if err != nil {
			batch.Dropped++
			continue
		}
		batch.Aircraft = append(batch.Aircraft, ac)
	}

	if len(batch.Aircraft) == 0 {
		if batch.Dropped > 0 {
			batch.Msg = MsgUndecodable
		} else if batch.Msg == "" {
			batch.Msg = MsgNoAircraft
		}
	}

	return batch, nil
}

func (p *Parser) normalizeSanitized(raw json.RawMessage) (Aircraft, error) {
	clean, err := sanitizeUnsafeIntegers(raw, p.normalizer.SafeIntegerLimit())
	if err != nil {
		return Aircraft{}, err
	}
	return p.normalizer.Normalize(clean)
}
