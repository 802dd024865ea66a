package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/projects/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the mapped Code for err, or Other when err does not
// carry a normalized *Error.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError normalizes a raw PostgreSQL error.
//
// The SQLSTATE and severity are mapped into our enums; table, column and
// constraint metadata are kept so messages can name the offending field.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds a machine code of the form <TABLE>_<ACTION>.
//
//	category + ForeignKeyViolation => CATEGORY_NOT_FOUND
//	category + UniqueViolation     => CATEGORY_ALREADY_EXISTS
//	project + NotNullViolation     => PROJECT_REQUIRED
//
// Table names in this schema are already singular.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "record"
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, NumericOutOfRange, InvalidText:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", strings.ToUpper(tableName), action)
}

// formatUserFriendlyMessage produces the message printed by the console.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		if referenced := extractReferencedEntity(sqlErr.ConstraintName); referenced != "" {
			entityName = humanizeText(referenced)
		}
		return fmt.Sprintf("The referenced %s does not exist", strings.ToLower(entityName))

	case UniqueViolation:
		// "identifier" is replaced by the column name when the constraint
		// name lets us infer it.
		return fmt.Sprintf("A %s with this identifier already exists", strings.ToLower(entityName))

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case NumericOutOfRange:
		return "A numeric value is out of range (hours and costs allow at most 5 digits before the decimal point)"

	case UndefinedTable:
		return "The database schema is missing; run `projects migrate` first"

	default:
		return "An error occurred while executing a database statement"
	}
}

// getEntityName infers what a message should refer to.
//
// A foreign key column such as "project_id" names the referenced entity
// best; otherwise the table name is used, falling back to "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if tableName != "" {
		return humanizeText(tableName)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case.
//
//	"project_name" -> "Project Name"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var foreignKeyRe = regexp.MustCompile(`_([a-z]+)_id_fkey$`)

// extractReferencedEntity infers the referenced table from a foreign key
// constraint name. PostgreSQL names them <table>_<column>_fkey.
//
//	project_category_category_id_fkey -> "category"
func extractReferencedEntity(constraintName string) string {
	matches := foreignKeyRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

var constraintColumnRe = regexp.MustCompile(`^[a-z]+_([a-z_]+?)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers the column from a unique
// constraint name. PostgreSQL names them <table>_<column>_key.
//
//	category_category_name_key -> "category_name"
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.SplitN(constraintName, "_", 3)
		if len(parts) == 3 {
			return parts[2]
		}
	}

	matches := constraintColumnRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts a low-level database error into an application error.
//
// Output:
//   - already an *errs.AppError: returned unchanged
//   - *pgconn.PgError: a statement error with a table-derived code
//   - context cancellation: a statement error naming the interruption
//   - anything else: a generic statement error wrapping err
//
// The repository calls this after rolling a transaction back.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sqlErr := ConvertPgError(pgErr)

		table := sqlErr.TableName
		if sqlErr.Code == ForeignKeyViolation {
			if referenced := extractReferencedEntity(sqlErr.ConstraintName); referenced != "" {
				table = referenced
			}
		}

		errorCode := generateErrorCode(table, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		if sqlErr.Code == UniqueViolation {
			if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", strings.ToLower(humanizeText(columnName)))
			}
		}

		return errs.NewStatementError(userMessage, &errorCode, sqlErr)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errs.NewStatementError("The database statement was interrupted", nil, err)
	}

	return errs.NewStatementError("Unable to execute database statement", nil, err)
}
