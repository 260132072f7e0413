// Package pgread provides read-only PostgreSQL access for the db tool
// group. Write statements are rejected client-side before anything reaches
// the database; the check fails closed.
package pgread

import (
	"fmt"
	"regexp"
	"strings"

	"jarvismcp/internal/domain"
)

// Statements are rejected if they contain any of these keywords anywhere,
// not just in the leading clause. The list deliberately overshoots
// (e.g. set, analyze): ambiguous statements are rejected, not allowed.
var readonlyBlocklist = []string{
	"for update",
	"insert",
	"update",
	"delete",
	"drop",
	"alter",
	"create",
	"truncate",
	"grant",
	"revoke",
	"commit",
	"rollback",
	"vacuum",
	"analyze",
	"refresh",
	"execute",
	"call",
	"do",
	"set",
	"copy",
	"lock",
}

// Keyword boundaries treat "_" as a word character, so state-changing
// functions like set_config slip past the keyword list. They get their own
// pattern.
var forbiddenFunctionRE = regexp.MustCompile(
	`\b(set_config|pg_terminate_backend|pg_cancel_backend|pg_reload_conf|` +
		`pg_rotate_logfile|pg_switch_wal|pg_promote|pg_create_restore_point|` +
		`pg_advisory_lock|pg_advisory_xact_lock|lo_import|lo_export)\s*\(`)

var (
	blockCommentRE = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRE  = regexp.MustCompile(`--[^\n]*`)
	whitespaceRE   = regexp.MustCompile(`\s+`)

	blocklistRE []*regexp.Regexp
)

func init() {
	for _, keyword := range readonlyBlocklist {
		pattern := `\b` + strings.ReplaceAll(regexp.QuoteMeta(keyword), ` `, `\s+`) + `\b`
		blocklistRE = append(blocklistRE, regexp.MustCompile(pattern))
	}
}

// ValidateReadOnly rejects any statement that is not a single read-only
// SELECT (or WITH ... SELECT). Comments are stripped before the check.
func ValidateReadOnly(query string) error {
	stripped := stripComments(query)
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return domain.Errorf(domain.CodeInvalidArguments, "pgread.validate", "query is empty")
	}
	if strings.Contains(stripped, ";") {
		return domain.Errorf(domain.CodeInvalidArguments, "pgread.validate", "multiple statements are not allowed")
	}

	normalized := strings.ToLower(whitespaceRE.ReplaceAllString(stripped, " "))
	if !strings.HasPrefix(normalized, "select") && !strings.HasPrefix(normalized, "with") {
		return domain.Errorf(domain.CodeInvalidArguments, "pgread.validate", "only SELECT queries are allowed")
	}

	for i, re := range blocklistRE {
		if re.MatchString(normalized) {
			return domain.Errorf(domain.CodeInvalidArguments, "pgread.validate",
				"query contains forbidden keyword: %s", readonlyBlocklist[i])
		}
	}
	if match := forbiddenFunctionRE.FindStringSubmatch(normalized); match != nil {
		return domain.Errorf(domain.CodeInvalidArguments, "pgread.validate",
			"query contains forbidden function: %s", match[1])
	}
	return nil
}

func stripComments(query string) string {
	query = blockCommentRE.ReplaceAllString(query, " ")
	return lineCommentRE.ReplaceAllString(query, " ")
}

// wrapWithLimit bounds result size without trusting the statement's own
// LIMIT clause.
func wrapWithLimit(query string, maxRows int) string {
	return fmt.Sprintf("SELECT * FROM (%s) AS _jarvis_sub LIMIT %d", strings.TrimSpace(query), maxRows)
}
