package model

import "time"

// Valid values for the users.role column.  The storage layer rejects
// any other value before the row reaches the database.
const (
    RoleStudent = "student"
    RoleTeacher = "teacher"
    RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the accepted role names.
func ValidRole(role string) bool {
    return role == RoleStudent || role == RoleTeacher || role == RoleAdmin
}

// User represents a student or staff record as stored in the `users`
// table.  Each field corresponds to a column in the database.  Optional
// columns are pointers so that nil represents NULL.  Emails are stored
// lower-cased; normalization happens in the repository layer before any
// write.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Email     – unique, lower-cased email address.
//  Name      – optional display name.
//  Grade     – optional grade label (e.g. "10").
//  StudentID – optional unique school-issued student identifier.
//  Role      – one of student, teacher, admin.  Defaults to student.
//  CreatedAt – timestamp of creation.
type User struct {
    ID        int64      // users.id
    Email     string     // users.email
    Name      *string    // users.name (nullable)
    Grade     *string    // users.grade (nullable)
    StudentID *string    // users.student_id (nullable)
    Role      string     // users.role
    CreatedAt time.Time  // users.created_at
}
