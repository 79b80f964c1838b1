package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 能穿透原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓包裝過的錯誤仍能對應預定義錯誤
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Wrap 以預定義錯誤為模板包裝原始錯誤
func Wrap(base *CustomError, err error) *CustomError {
	return NewError(base.Code, base.Message, base.Status, err)
}

// ToResponse 轉換為 API 錯誤響應與狀態碼；驗證錯誤視為無效請求，其餘非 CustomError 一律視為內部錯誤
func ToResponse(err error, debug bool) (int, ErrorResponse) {
	var ce *CustomError
	switch {
	case errors.As(err, &ce):
	case IsValidationError(err):
		ce = Wrap(ErrInvalidRequest, err)
	default:
		ce = Wrap(ErrInternalError, err)
	}
	resp := ErrorResponse{Code: ce.Code, Message: ce.Message}
	if debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	return ce.Status, resp
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest     = "INVALID_REQUEST"     // 400
	ErrCodeInvalidPreferences = "INVALID_PREFERENCES" // 400
	ErrCodeNotFound           = "NOT_FOUND"           // 404
	ErrCodeFoodNotFound       = "FOOD_NOT_FOUND"      // 404
	ErrCodeRequestTimeout     = "REQUEST_TIMEOUT"     // 408
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"   // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError       = "INTERNAL_ERROR"       // 500
	ErrCodeMalformedUpstream   = "MALFORMED_UPSTREAM"   // 502
	ErrCodeSourceUnavailable   = "SOURCE_UNAVAILABLE"   // 503
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"  // 503
	ErrCodeGatewayTimeout      = "GATEWAY_TIMEOUT"      // 504
	ErrCodeGenerativeDisabled  = "GENERATIVE_DISABLED"  // 503
	ErrCodeGenerativeThrottled = "GENERATIVE_THROTTLED" // 429
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrInvalidPreferences = NewError(ErrCodeInvalidPreferences, "無效的權重設定", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrFoodNotFound       = NewError(ErrCodeFoodNotFound, "找不到此食物的環境資料", http.StatusNotFound, nil)
	ErrRequestTimeout     = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 外部來源錯誤（僅供內部降級判斷，不會回傳給呼叫者）
	ErrSourceUnavailable = NewError(ErrCodeSourceUnavailable, "外部資料來源不可用", http.StatusServiceUnavailable, nil)
	ErrMalformedUpstream = NewError(ErrCodeMalformedUpstream, "外部資料格式錯誤", http.StatusBadGateway, nil)

	// 生成式服務
	ErrGenerativeDisabled  = NewError(ErrCodeGenerativeDisabled, "生成式服務未啟用", http.StatusServiceUnavailable, nil)
	ErrGenerativeThrottled = NewError(ErrCodeGenerativeThrottled, "生成式服務請求過於頻繁", http.StatusTooManyRequests, nil)

	// 快取
	ErrCacheMiss     = NewError("CACHE_MISS", "快取未命中", http.StatusNotFound, nil)
	ErrCacheFull     = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled = NewError("CACHE_DISABLED", "緩存已禁用", http.StatusServiceUnavailable, nil)
)
