// ABOUTME: easyjson jlexer decoders for the SSE payloads the stream reader hits per event
// ABOUTME: UnmarshalJSON overrides keep encoding/json callers on the fast path

package easel

import "github.com/mailru/easyjson/jlexer"

func (p *toolPayload) UnmarshalJSON(data []byte) error {
	in := jlexer.Lexer{Data: data}
	p.decode(&in)
	return in.Error()
}

func (p *toolPayload) decode(in *jlexer.Lexer) {
	if in.IsNull() {
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "id":
			p.ID = in.String()
		case "name":
			p.Name = in.String()
		case "description":
			p.Description = in.String()
		case "status":
			p.Status = in.String()
		case "input":
			p.Input = in.String()
		case "result":
			p.Result = in.String()
		case "error":
			p.Error = in.String()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()
}

func (p *completePayload) UnmarshalJSON(data []byte) error {
	in := jlexer.Lexer{Data: data}
	p.decode(&in)
	return in.Error()
}

func (p *completePayload) decode(in *jlexer.Lexer) {
	if in.IsNull() {
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "content":
			p.Content = in.String()
		case "reasoning":
			p.Reasoning = in.String()
		case "reasoningDuration":
			p.ReasoningDuration = in.Float64()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()
}

func (p *errorPayload) UnmarshalJSON(data []byte) error {
	in := jlexer.Lexer{Data: data}
	p.decode(&in)
	return in.Error()
}

func (p *errorPayload) decode(in *jlexer.Lexer) {
	if in.IsNull() {
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "error":
			p.Error = in.String()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()
}
