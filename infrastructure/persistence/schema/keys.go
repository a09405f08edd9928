// Package schema owns the single-table key grammar for the LearningPlatform
// table. Every entity family is addressed through the builders in this file;
// nothing else in the codebase formats a PK, SK or GSI key by hand. The key
// strings are a durable contract with existing data and must not change.
package schema

import (
	"fmt"
	"time"
)

// Table attribute names.
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrEntityType = "entityType"

	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"
	AttrGSI2PK = "GSI2PK"
	AttrGSI2SK = "GSI2SK"
	AttrGSI3PK = "GSI3PK"
	AttrGSI3SK = "GSI3SK"
	AttrGSI4PK = "GSI4PK"
	AttrGSI4SK = "GSI4SK"
	AttrGSI5PK = "GSI5PK"
	AttrGSI5SK = "GSI5SK"
	AttrGSI6PK = "GSI6PK"
	AttrGSI6SK = "GSI6SK"
	AttrGSI8PK = "GSI8PK"
	AttrGSI8SK = "GSI8SK"
)

// Index names. Created with exactly these names and key pairs.
const (
	IndexGSI1 = "GSI1" // instructor courses, ticket status queues, admin listings
	IndexGSI2 = "GSI2" // course enrollments, user tickets
	IndexGSI3 = "GSI3" // price-sorted courses, name-sorted categories
	IndexGSI4 = "GSI4" // user by email
	IndexGSI5 = "GSI5" // courses by category
	IndexGSI6 = "GSI6" // course ratings, newest first
	IndexGSI8 = "GSI8" // audit trail per admin
)

// Entity type discriminators.
const (
	EntityUser          = "User"
	EntityCourse        = "Course"
	EntityLecture       = "Lecture"
	EntityEnrollment    = "Enrollment"
	EntityRating        = "Rating"
	EntityCategory      = "Category"
	EntityAdminAction   = "AdminAction"
	EntitySecurityEvent = "SecurityEvent"
	EntityTicket        = "SupportTicket"
	EntityTicketMessage = "TicketMessage"
	EntityAnnouncement  = "Announcement"
	EntityNotification  = "Notification"
	EntityTemplate      = "NotificationTemplate"
	EntityBackup        = "Backup"
	EntityMaintenance   = "MaintenanceWindow"
	EntitySettings      = "SystemSettings"
)

// TimeLayout is ISO-8601 UTC with fixed-width milliseconds so that
// lexicographic order on sort keys equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the sort-key timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// PadPrice encodes a price as a fixed-width decimal padded with leading
// zeros to width 10 so that lexicographic order matches numeric order.
// Callers reject negative prices before encoding.
func PadPrice(price float64) string {
	return fmt.Sprintf("%010.2f", price)
}

// User: PK=USER#<uid> SK=PROFILE, GSI4 EMAIL#<email>/USER.
func UserPK(userID string) string   { return "USER#" + userID }
func UserSK() string                { return "PROFILE" }
func UserGSI4PK(email string) string { return "EMAIL#" + email }
func UserGSI4SK() string            { return "USER" }

// Course: PK=COURSE#<cid> SK=METADATA.
func CoursePK(courseID string) string { return "COURSE#" + courseID }
func CourseSK() string                { return "METADATA" }

// GSI1: INSTRUCTOR#<iid> / COURSE#<ts>#<cid>, reverse-scanned for newest first.
func CourseGSI1PK(instructorID string) string { return "INSTRUCTOR#" + instructorID }
func CourseGSI1SK(createdAt, courseID string) string {
	return fmt.Sprintf("COURSE#%s#%s", createdAt, courseID)
}

// GSI3: COURSE / PRICE#<pad10>#<cid> for price-ordered listings.
func CourseGSI3PK() string { return "COURSE" }
func CourseGSI3SK(price float64, courseID string) string {
	return fmt.Sprintf("PRICE#%s#%s", PadPrice(price), courseID)
}

// GSI5: CATEGORY#<catId> / COURSE#<ts>#<cid>, only when categorized.
func CourseGSI5PK(categoryID string) string { return "CATEGORY#" + categoryID }
func CourseGSI5SK(createdAt, courseID string) string {
	return fmt.Sprintf("COURSE#%s#%s", createdAt, courseID)
}

// Lecture: PK=COURSE#<cid> SK=LECTURE#<lid>.
func LecturePK(courseID string) string  { return "COURSE#" + courseID }
func LectureSK(lectureID string) string { return "LECTURE#" + lectureID }
func LecturePrefix() string             { return "LECTURE#" }

// Enrollment: PK=USER#<uid> SK=ENROLLMENT#<cid>, GSI2 COURSE#<cid>/ENROLLMENT#<uid>.
func EnrollmentPK(userID string) string       { return "USER#" + userID }
func EnrollmentSK(courseID string) string     { return "ENROLLMENT#" + courseID }
func EnrollmentPrefix() string                { return "ENROLLMENT#" }
func EnrollmentGSI2PK(courseID string) string { return "COURSE#" + courseID }
func EnrollmentGSI2SK(userID string) string   { return "ENROLLMENT#" + userID }

// Rating: PK=USER#<uid> SK=RATING#<cid>, GSI6 COURSE#<cid>/RATING#<ts>#<uid>.
func RatingPK(userID string) string       { return "USER#" + userID }
func RatingSK(courseID string) string     { return "RATING#" + courseID }
func RatingGSI6PK(courseID string) string { return "COURSE#" + courseID }
func RatingGSI6SK(createdAt, userID string) string {
	return fmt.Sprintf("RATING#%s#%s", createdAt, userID)
}
func RatingGSI6Prefix() string { return "RATING#" }

// Category: PK=CATEGORY#<catId> SK=METADATA, GSI3 CATEGORY/NAME#<name>.
func CategoryPK(categoryID string) string { return "CATEGORY#" + categoryID }
func CategorySK() string                  { return "METADATA" }
func CategoryGSI3PK() string              { return "CATEGORY" }
func CategoryGSI3SK(name string) string   { return "NAME#" + name }

// Audit action: PK=ADMIN#<adminId> SK=ACTION#<ts>#<actionId>, GSI8 mirrors
// the primary key under the AUDIT# partition.
func AuditPK(adminID string) string { return "ADMIN#" + adminID }
func AuditSK(timestamp, actionID string) string {
	return fmt.Sprintf("ACTION#%s#%s", timestamp, actionID)
}
func AuditPrefix() string               { return "ACTION#" }
func AuditGSI8PK(adminID string) string { return "AUDIT#" + adminID }

// Security event: PK=SECURITY#<type> SK=EVENT#<ts>#<id>.
func SecurityEventPK(eventType string) string { return "SECURITY#" + eventType }
func SecurityEventSK(timestamp, eventID string) string {
	return fmt.Sprintf("EVENT#%s#%s", timestamp, eventID)
}
func SecurityEventPrefix() string { return "EVENT#" }

// Support ticket: PK=TICKET#<tid> SK=METADATA.
// GSI1: TICKETS#<status> / PRIORITY#<prio>#<ts> — the partition mirrors the
// current status and is rewritten on every transition.
// GSI2: USER#<uid> / TICKET#<ts>.
func TicketPK(ticketID string) string     { return "TICKET#" + ticketID }
func TicketSK() string                    { return "METADATA" }
func TicketGSI1PK(status string) string   { return "TICKETS#" + status }
func TicketGSI1SK(priority, createdAt string) string {
	return fmt.Sprintf("PRIORITY#%s#%s", priority, createdAt)
}
func TicketGSI2PK(userID string) string    { return "USER#" + userID }
func TicketGSI2SK(createdAt string) string { return "TICKET#" + createdAt }

// Ticket message: PK=TICKET#<tid> SK=MESSAGE#<ts>#<mid>.
func TicketMessageSK(timestamp, messageID string) string {
	return fmt.Sprintf("MESSAGE#%s#%s", timestamp, messageID)
}
func TicketMessagePrefix() string { return "MESSAGE#" }

// Announcement: PK=ANNOUNCEMENT#<id> SK=METADATA.
// GSI1 partition mirrors the lifecycle status, like tickets.
func AnnouncementPK(announcementID string) string { return "ANNOUNCEMENT#" + announcementID }
func AnnouncementSK() string                      { return "METADATA" }
func AnnouncementGSI1PK(status string) string     { return "ANNOUNCEMENTS#" + status }
func AnnouncementGSI1SK(createdAt string) string  { return "CREATED#" + createdAt }

// Notification: PK=NOTIFICATION#<uid> SK=NOTIF#<ts>#<nid>, newest first by
// reverse prefix query.
func NotificationPK(userID string) string { return "NOTIFICATION#" + userID }
func NotificationSK(timestamp, notificationID string) string {
	return fmt.Sprintf("NOTIF#%s#%s", timestamp, notificationID)
}
func NotificationPrefix() string { return "NOTIF#" }

// Notification template: PK=TEMPLATE#<id> SK=METADATA.
func TemplatePK(templateID string) string { return "TEMPLATE#" + templateID }
func TemplateSK() string                  { return "METADATA" }

// Backup: PK=BACKUP#<id> SK=METADATA, GSI1 BACKUPS / CREATED#<ts>.
func BackupPK(backupID string) string    { return "BACKUP#" + backupID }
func BackupSK() string                   { return "METADATA" }
func BackupGSI1PK() string               { return "BACKUPS" }
func BackupGSI1SK(createdAt string) string { return "CREATED#" + createdAt }

// Maintenance window: PK=MAINTENANCE#<id> SK=METADATA, GSI1 MAINTENANCE / WINDOW#<start>.
func MaintenancePK(windowID string) string { return "MAINTENANCE#" + windowID }
func MaintenanceSK() string                { return "METADATA" }
func MaintenanceGSI1PK() string            { return "MAINTENANCE" }
func MaintenanceGSI1SK(startsAt string) string { return "WINDOW#" + startsAt }

// System settings: PK=SYSTEM, SK=SETTINGS or SECURITY_POLICIES.
func SystemPK() string             { return "SYSTEM" }
func SettingsSK() string           { return "SETTINGS" }
func SecurityPoliciesSK() string   { return "SECURITY_POLICIES" }
