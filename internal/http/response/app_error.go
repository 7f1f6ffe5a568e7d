package response

// AppError 处理器层错误：业务码、文案键与底层原因
type AppError struct {
	Code int
	Key  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Key
	}
	return e.Key + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建处理器层错误
func NewAppError(code int, key string, err error) *AppError {
	return &AppError{Code: code, Key: key, Err: err}
}
