package domain

// AdminAction is one append-only audit record at
// ADMIN#<adminId>/ACTION#<ts>#<actionId>. Every privileged mutation emits
// exactly one.
type AdminAction struct {
	ActionID     string `json:"actionId" dynamodbav:"actionId"`
	AdminID      string `json:"adminId" dynamodbav:"adminId"`
	Action       string `json:"action" dynamodbav:"action"`
	TargetEntity string `json:"targetEntity" dynamodbav:"targetEntity"`
	PreviousValue any   `json:"previousValue,omitempty" dynamodbav:"previousValue,omitempty"`
	NewValue      any   `json:"newValue,omitempty" dynamodbav:"newValue,omitempty"`
	Reason        string `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
	IPAddress    string `json:"ipAddress" dynamodbav:"ipAddress"`
	UserAgent    string `json:"userAgent" dynamodbav:"userAgent"`
	Timestamp    string `json:"timestamp" dynamodbav:"timestamp"`
}

// SecurityEvent is a security-relevant occurrence (failed login, lockout,
// policy change) at SECURITY#<type>/EVENT#<ts>#<id>.
type SecurityEvent struct {
	ID        string `json:"id" dynamodbav:"id"`
	Type      string `json:"type" dynamodbav:"type"`
	UserID    string `json:"userId,omitempty" dynamodbav:"userId,omitempty"`
	Email     string `json:"email,omitempty" dynamodbav:"email,omitempty"`
	IPAddress string `json:"ipAddress,omitempty" dynamodbav:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty" dynamodbav:"userAgent,omitempty"`
	Detail    string `json:"detail,omitempty" dynamodbav:"detail,omitempty"`
	Timestamp string `json:"timestamp" dynamodbav:"timestamp"`
}

// Security event types.
const (
	SecurityEventFailedLogin      = "failed_login"
	SecurityEventSuspendedLogin   = "suspended_login"
	SecurityEventPolicyChange     = "policy_change"
)

// SystemSettings is the singleton item at SYSTEM/SETTINGS.
type SystemSettings struct {
	SiteName        string  `json:"siteName" dynamodbav:"siteName"`
	SupportEmail    string  `json:"supportEmail" dynamodbav:"supportEmail"`
	Currency        string  `json:"currency" dynamodbav:"currency"`
	CommissionRate  float64 `json:"commissionRate" dynamodbav:"commissionRate"`
	PaymentProvider string  `json:"paymentProvider" dynamodbav:"paymentProvider"`
	MaintenanceMode bool    `json:"maintenanceMode" dynamodbav:"maintenanceMode"`
	UpdatedBy       string  `json:"updatedBy,omitempty" dynamodbav:"updatedBy,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// SecurityPolicies is the singleton item at SYSTEM/SECURITY_POLICIES.
type SecurityPolicies struct {
	MaxFailedLogins       int      `json:"maxFailedLogins" dynamodbav:"maxFailedLogins"`
	SessionTimeoutMinutes int      `json:"sessionTimeoutMinutes" dynamodbav:"sessionTimeoutMinutes"`
	PasswordMinLength     int      `json:"passwordMinLength" dynamodbav:"passwordMinLength"`
	AllowedIPRanges       []string `json:"allowedIpRanges,omitempty" dynamodbav:"allowedIpRanges,omitempty"`
	UpdatedBy             string   `json:"updatedBy,omitempty" dynamodbav:"updatedBy,omitempty"`
	UpdatedAt             string   `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// DefaultSecurityPolicies are applied until a super admin writes their own.
func DefaultSecurityPolicies() SecurityPolicies {
	return SecurityPolicies{
		MaxFailedLogins:       5,
		SessionTimeoutMinutes: 60,
		PasswordMinLength:     8,
	}
}
