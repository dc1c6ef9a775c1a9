package models

type UserStatus string
type UserRole string
type EventLogType string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"

	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
)

const (
	EventLogLogin               EventLogType = "LOGIN"
	EventLogLogout              EventLogType = "LOGOUT"
	EventLogSubscriptionAdded   EventLogType = "SUBSCRIPTION_ADDED"
	EventLogSubscriptionRemoved EventLogType = "SUBSCRIPTION_REMOVED"
	EventLogReminderEmailSent   EventLogType = "REMAINDER_EMAIL_SENT"
	EventLogNoticeEmailSent     EventLogType = "NOTICE_EMAIL_SENT"
	EventLogReportEmailSent     EventLogType = "REPORT_EMAIL_SENT"
	EventLogErrorSendingEmail   EventLogType = "ERROR_SENDING_EMAIL"
)

var eventLogTypes = map[EventLogType]struct{}{
	EventLogLogin:               {},
	EventLogLogout:              {},
	EventLogSubscriptionAdded:   {},
	EventLogSubscriptionRemoved: {},
	EventLogReminderEmailSent:   {},
	EventLogNoticeEmailSent:     {},
	EventLogReportEmailSent:     {},
	EventLogErrorSendingEmail:   {},
}

func (t EventLogType) Valid() bool {
	_, ok := eventLogTypes[t]
	return ok
}

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleEditor
}
