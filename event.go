package toon

// Event identifies the kind of parsing event produced by Decoder.Next.
type Event int

const (
	StartObject Event = iota
	EndObject
	StartArray
	EndArray
	FieldName
	ValueString
	ValueIntegral
	ValueFractional
	ValueTrue
	ValueFalse
	ValueNull
	Eof
)

func (e Event) String() string {
	switch e {
	case StartObject:
		return "StartObject"
	case EndObject:
		return "EndObject"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case FieldName:
		return "FieldName"
	case ValueString:
		return "ValueString"
	case ValueIntegral:
		return "ValueIntegral"
	case ValueFractional:
		return "ValueFractional"
	case ValueTrue:
		return "ValueTrue"
	case ValueFalse:
		return "ValueFalse"
	case ValueNull:
		return "ValueNull"
	case Eof:
		return "Eof"
	default:
		return "Unknown"
	}
}
