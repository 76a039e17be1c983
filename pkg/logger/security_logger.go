package logger

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"keyword-report/pkg/utils"
)

var (
	botTokenPattern = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
	secretPattern   = regexp.MustCompile(`(?i)(key|token|secret|signature)[=:]\s*[A-Za-z0-9+/=_-]+`)
)

// SecurityLogger provides methods to safely log credentials and endpoints
type SecurityLogger struct {
	*Logger
}

// NewSecurityLogger creates a new security-aware logger
func NewSecurityLogger(base *Logger) *SecurityLogger {
	if base == nil {
		base = GetLogger()
	}
	return &SecurityLogger{Logger: base}
}

// MaskSecret replaces a credential with a kind-tagged fingerprint
func (sl *SecurityLogger) MaskSecret(kind, secret string) string {
	if secret == "" {
		return kind + "#unset"
	}
	return kind + "#" + utils.Fingerprint(secret)
}

// MaskAPIEndpoint keeps the host of an endpoint and drops path and query
func (sl *SecurityLogger) MaskAPIEndpoint(apiURL string) string {
	if apiURL == "" {
		return ""
	}

	parsedURL, err := url.Parse(apiURL)
	if err != nil || parsedURL.Host == "" {
		return "api-endpoint#" + utils.Fingerprint(apiURL)
	}

	return fmt.Sprintf("%s/api#%s", parsedURL.Host, utils.Fingerprint(apiURL))
}

// MaskSensitiveData masks credential-looking values in a field map
func (sl *SecurityLogger) MaskSensitiveData(data map[string]interface{}) map[string]interface{} {
	masked := make(map[string]interface{}, len(data))

	for key, value := range data {
		lowerKey := strings.ToLower(key)
		str, isString := value.(string)

		switch {
		case !isString:
			masked[key] = value
		case strings.Contains(lowerKey, "secret"),
			strings.Contains(lowerKey, "token"),
			strings.Contains(lowerKey, "license"),
			strings.Contains(lowerKey, "api_key"):
			masked[key] = sl.MaskSecret(lowerKey, str)
		case strings.Contains(lowerKey, "chat_id"), strings.Contains(lowerKey, "customer"):
			masked[key] = sl.MaskSecret("id", str)
		case strings.Contains(lowerKey, "url"):
			masked[key] = sl.MaskAPIEndpoint(str)
		default:
			masked[key] = value
		}
	}

	return masked
}

// MaskLogMessage masks bot tokens and inline secrets in free text
func (sl *SecurityLogger) MaskLogMessage(message string) string {
	masked := botTokenPattern.ReplaceAllStringFunc(message, func(token string) string {
		return "bot#" + utils.Fingerprint(token)
	})
	return secretPattern.ReplaceAllString(masked, "${1}=***")
}

// SafeInfo logs info with automatic sensitive data masking
func (sl *SecurityLogger) SafeInfo(msg string, fields map[string]interface{}) {
	if fields != nil {
		sl.Logger.WithFields(sl.MaskSensitiveData(fields)).Info(sl.MaskLogMessage(msg))
	} else {
		sl.Logger.Info(sl.MaskLogMessage(msg))
	}
}

// SafeError logs error with automatic sensitive data masking
func (sl *SecurityLogger) SafeError(msg string, err error, fields map[string]interface{}) {
	maskedFields := map[string]interface{}{}
	if err != nil {
		maskedFields["error"] = sl.MaskLogMessage(err.Error())
	}

	for k, v := range sl.MaskSensitiveData(fields) {
		maskedFields[k] = v
	}

	sl.Logger.WithFields(maskedFields).Error(sl.MaskLogMessage(msg))
}

// SafeWarn logs warning with automatic sensitive data masking
func (sl *SecurityLogger) SafeWarn(msg string, fields map[string]interface{}) {
	if fields != nil {
		sl.Logger.WithFields(sl.MaskSensitiveData(fields)).Warn(sl.MaskLogMessage(msg))
	} else {
		sl.Logger.Warn(sl.MaskLogMessage(msg))
	}
}

var (
	securityLoggerInstance *SecurityLogger
	securityLoggerOnce     sync.Once
)

// GetSecurityLogger returns a singleton security logger
func GetSecurityLogger() *SecurityLogger {
	securityLoggerOnce.Do(func() {
		securityLoggerInstance = NewSecurityLogger(GetLogger())
	})
	return securityLoggerInstance
}
