package form

import (
	"encoding/json"
	"errors"
)

// fallbackErrorMessage はエラー値を文字列化できなかった場合の表示文言です。
const fallbackErrorMessage = "Falha inesperada"

var (
	// ErrEmptyPrompt はトリム後のプロンプトが空の場合に返ります。外部呼び出しは行われません。
	ErrEmptyPrompt = errors.New("prompt is required")
	// ErrUnavailable は SDK がまだ読み込まれていない場合に返ります。外部呼び出しは行われません。
	ErrUnavailable = errors.New("image SDK is not available")
	// ErrBusy は呼び出し中に二重送信された場合に返ります。
	ErrBusy = errors.New("a generation is already in progress")
)

// CallError は外部呼び出しの失敗です。Message は表示用に正規化された文字列です。
type CallError struct {
	Message string
	Value   any
}

func (e *CallError) Error() string {
	return e.Message
}

func (e *CallError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// DescribeError は投げられた値を表示用の文字列に正規化します。
// 文字列はそのまま、error はメッセージ、それ以外は JSON 化し、JSON 化に失敗すれば汎用文言を返します。
func DescribeError(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fallbackErrorMessage
	}
	return string(b)
}
