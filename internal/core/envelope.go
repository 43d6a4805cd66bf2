package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EnvelopeKey is the single key of the read-operation payload.
const EnvelopeKey = "gastos"

// EmptyEnvelope is returned verbatim when the ledger has no records.
const EmptyEnvelope = `{"gastos": []}`

// EncodeEnvelope renders entries as {"gastos": [...]} preserving order.
// Entries are compact objects joined by ", "; text is not HTML-escaped.
func EncodeEnvelope(entries []Entry) (string, error) {
	if len(entries) == 0 {
		return EmptyEnvelope, nil
	}

	var b strings.Builder
	b.WriteString(`{"` + EnvelopeKey + `": [`)
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		data, err := marshalNoEscape(e)
		if err != nil {
			return "", fmt.Errorf("encode entry %d: %w", i, err)
		}
		b.Write(data)
	}
	b.WriteString("]}")
	return b.String(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
