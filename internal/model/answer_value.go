package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AnswerValue is either a single string or an ordered list of strings.
// Ranking questions use the list form, every other type the string form.
type AnswerValue struct {
	Text   string
	List   []string
	IsList bool
}

func TextAnswer(s string) AnswerValue {
	return AnswerValue{Text: s}
}

func ListAnswer(items ...string) AnswerValue {
	if items == nil {
		items = []string{}
	}
	return AnswerValue{List: items, IsList: true}
}

// Empty reports whether no answer was supplied. An empty list still counts
// as an answer.
func (a AnswerValue) Empty() bool {
	return !a.IsList && a.Text == ""
}

func (a AnswerValue) String() string {
	if a.IsList {
		return fmt.Sprintf("%v", a.List)
	}
	return a.Text
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.IsList {
		return json.Marshal(a.List)
	}
	return json.Marshal(a.Text)
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = AnswerValue{}
		return nil
	case data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("answer list must contain strings: %w", err)
		}
		*a = ListAnswer(list...)
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
		return nil
	default:
		return fmt.Errorf("answer must be a string or a list of strings")
	}
}

func (a AnswerValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if a.IsList {
		return bson.MarshalValue(a.List)
	}
	return bson.MarshalValue(a.Text)
}

func (a *AnswerValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = AnswerValue{}
	case bsontype.String:
		*a = TextAnswer(raw.StringValue())
	case bsontype.Array:
		var list []string
		if err := raw.Unmarshal(&list); err != nil {
			return err
		}
		*a = ListAnswer(list...)
	default:
		return fmt.Errorf("unsupported answer bson type %s", t)
	}
	return nil
}
