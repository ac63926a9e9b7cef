package describe

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	tabledesc "github.com/shibukawa/tabledesc"
	"github.com/shopspring/decimal"
)

// RawDefault carries the catalog facts needed to interpret one column's
// default clause outside a live reader. Offline sources such as snapshot
// artefacts hand these to NormalizeDefault to get the same four-state
// defaults a connection would report.
type RawDefault struct {
	// DeclaredType is the column's native type rendering; it decides the
	// decode affinity.
	DeclaredType string
	// Text is the default clause exactly as the catalog stores it. An
	// invalid NullString means the column has no default clause.
	Text sql.NullString
	// Nullable mirrors the column's NULL acceptance. MySQL needs it to
	// tell an implicit NULL default from no default at all.
	Nullable bool
	// Expression marks defaults the catalog itself flags as expressions.
	Expression bool
	// EnumValues, when non-empty, decodes the literal as an enum label.
	EnumValues []string
}

// NormalizeDefault interprets raw exactly as the dialect's live reader
// would.
func NormalizeDefault(dialect tabledesc.Dialect, raw RawDefault) tabledesc.DefaultValue {
	return normalizeDefault(dialect, rawColumn{
		dataType:    raw.DeclaredType,
		nullable:    raw.Nullable,
		defaultText: raw.Text,
		defaultExpr: raw.Expression,
		enumValues:  raw.EnumValues,
	})
}

// normalizeDefault turns a catalog default clause into the dual raw/parsed
// representation. Raw always keeps the verbatim backend text; only the
// decoded value differs by dialect and type affinity. Decisions are column
// local: an undecodable clause degrades to an expression default rather
// than failing the describe call.
func normalizeDefault(dialect tabledesc.Dialect, col rawColumn) tabledesc.DefaultValue {
	if dialect == tabledesc.DialectMySQL || col.defaultLiteral {
		return normalizePreUnquotedDefault(dialect, col)
	}

	if !col.defaultText.Valid {
		return tabledesc.DefaultValue{}
	}

	raw := col.defaultText.String
	if col.defaultExpr {
		return tabledesc.DefaultValue{Kind: tabledesc.DefaultExpression, Raw: raw}
	}

	token := strings.TrimSpace(raw)

	switch dialect {
	case tabledesc.DialectPostgres:
		token = stripPostgresCasts(token)
		token = stripOuterParens(token)
	case tabledesc.DialectMSSQL:
		token = stripOuterParens(token)
	}

	// The bare NULL keyword is the SQL NULL default. A quoted 'NULL' still
	// has its quotes here and falls through as string data.
	if strings.EqualFold(token, "NULL") {
		return tabledesc.DefaultValue{Kind: tabledesc.DefaultNull, Raw: raw}
	}

	aff := affinityOf(dialect, col.dataType)
	if len(col.enumValues) > 0 {
		aff = affinityEnum
	}

	value, err := decodeLiteral(dialect, token, aff)
	if err != nil {
		return tabledesc.DefaultValue{Kind: tabledesc.DefaultExpression, Raw: raw}
	}

	return tabledesc.DefaultValue{Kind: tabledesc.DefaultLiteral, Raw: raw, Value: value}
}

// normalizePreUnquotedDefault handles catalogs that store literal defaults
// with the SQL quoting already removed (MySQL information_schema reports
// DEFAULT 'abc' as the text abc). The text is the value itself, so a stored
// "NULL" is four characters of data, never the NULL keyword: MySQL encodes
// the keyword as SQL NULL in COLUMN_DEFAULT, indistinguishable from "no
// default", and that ambiguity resolves through nullability.
func normalizePreUnquotedDefault(dialect tabledesc.Dialect, col rawColumn) tabledesc.DefaultValue {
	if !col.defaultText.Valid {
		if col.nullable {
			return tabledesc.DefaultValue{Kind: tabledesc.DefaultNull}
		}

		return tabledesc.DefaultValue{}
	}

	raw := col.defaultText.String

	aff := affinityOf(dialect, col.dataType)
	if len(col.enumValues) > 0 {
		aff = affinityEnum
	}

	if col.defaultExpr || isTimestampKeyword(raw, aff) {
		return tabledesc.DefaultValue{Kind: tabledesc.DefaultExpression, Raw: raw}
	}

	value, err := decodeBareLiteral(raw, aff)
	if err != nil {
		return tabledesc.DefaultValue{Kind: tabledesc.DefaultExpression, Raw: raw}
	}

	return tabledesc.DefaultValue{Kind: tabledesc.DefaultLiteral, Raw: raw, Value: value}
}

// isTimestampKeyword recognizes CURRENT_TIMESTAMP style defaults that older
// MySQL versions report without an expression flag. The check is gated on
// temporal affinity: a text column whose default is literally the word
// "current_timestamp" stays data.
func isTimestampKeyword(text string, aff typeAffinity) bool {
	if aff != affinityTemporal {
		return false
	}

	upper := strings.ToUpper(strings.TrimSpace(text))

	return strings.HasPrefix(upper, "CURRENT_TIMESTAMP") || strings.HasPrefix(upper, "NOW()")
}

// decodeLiteral decodes a quoted or bare token per affinity. The token
// arrives with dialect casts and wrapping parentheses already stripped but
// with its quoting intact.
func decodeLiteral(dialect tabledesc.Dialect, token string, aff typeAffinity) (any, error) {
	body, quoted := quotedBody(dialect, token)

	switch aff {
	case affinityInteger, affinityFloat, affinityDecimal:
		if quoted {
			return decodeNumber(body, aff)
		}

		return decodeNumber(token, aff)
	case affinityBoolean:
		s := token
		if quoted {
			s = body
		}

		value, ok := parseBoolToken(s)
		if !ok {
			return nil, ErrUnsupportedDefaultExpression
		}

		return value, nil
	case affinityUUID:
		if !quoted {
			return nil, ErrUnsupportedDefaultExpression
		}

		if u, err := uuid.Parse(body); err == nil {
			return u.String(), nil
		}

		return body, nil
	case affinityString, affinityEnum, affinityTemporal, affinityBinary, affinityOther:
		if !quoted {
			return nil, ErrUnsupportedDefaultExpression
		}

		return body, nil
	default:
		return nil, ErrUnsupportedDefaultExpression
	}
}

// decodeBareLiteral decodes pre-unquoted catalog text, where string data
// needs no unwrapping at all.
func decodeBareLiteral(text string, aff typeAffinity) (any, error) {
	switch aff {
	case affinityInteger, affinityFloat, affinityDecimal:
		return decodeNumber(text, aff)
	case affinityBoolean:
		value, ok := parseBoolToken(text)
		if !ok {
			return nil, ErrUnsupportedDefaultExpression
		}

		return value, nil
	case affinityUUID:
		if u, err := uuid.Parse(text); err == nil {
			return u.String(), nil
		}

		return text, nil
	default:
		return text, nil
	}
}

// decodeNumber parses numeric literals with the precision semantics of the
// declared type: integers as int64, floating types as float64, and decimal
// or numeric types as exact decimals so a DEFAULT '99.00' never rounds
// through a float.
func decodeNumber(s string, aff typeAffinity) (any, error) {
	s = strings.TrimSpace(s)

	switch aff {
	case affinityInteger:
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, nil
		}

		// Out of int64 range (unsigned bigint extremes) still decodes exactly.
		if d, err := decimal.NewFromString(s); err == nil {
			return d, nil
		}

		return nil, ErrUnsupportedDefaultExpression
	case affinityFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, ErrUnsupportedDefaultExpression
		}

		return v, nil
	default:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, ErrUnsupportedDefaultExpression
		}

		return d, nil
	}
}

// parseBoolToken maps the truthy and falsy literal tokens the supported
// backends render boolean defaults with.
func parseBoolToken(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "on", "1":
		return true, true
	case "false", "f", "no", "off", "0":
		return false, true
	default:
		return false, false
	}
}

// stripPostgresCasts removes the ::type suffixes pg_get_expr appends to
// literal defaults ('x'::character varying, 123::bigint). A :: inside a
// quoted literal is data and survives; a :: inside parentheses belongs to a
// function argument and marks the whole token as an expression, so it
// survives too.
func stripPostgresCasts(token string) string {
	if strings.HasPrefix(token, "'") || strings.HasPrefix(token, "E'") || strings.HasPrefix(token, "e'") {
		escapes := token[0] == 'E' || token[0] == 'e'

		end := closingQuote(token, escapes)
		if end < 0 {
			return token
		}

		rest := token[end+1:]
		if rest == "" || strings.HasPrefix(rest, "::") {
			return token[:end+1]
		}

		return token
	}

	depth := 0
	for i := 0; i < len(token)-1; i++ {
		switch token[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 && token[i+1] == ':' {
				return strings.TrimSpace(token[:i])
			}
		}
	}

	return token
}

// stripOuterParens unwraps the balanced parentheses SQL Server wraps every
// default definition in (((1)), (N'abc'), (getdate())). Parentheses inside
// quoted text are data and stop the unwrapping.
func stripOuterParens(token string) string {
	for len(token) >= 2 && token[0] == '(' && token[len(token)-1] == ')' {
		depth := 0
		wrapped := true
		inQuote := false

		for i := 0; i < len(token); i++ {
			c := token[i]
			switch {
			case c == '\'':
				if inQuote && i+1 < len(token) && token[i+1] == '\'' {
					i++
					continue
				}

				inQuote = !inQuote
			case inQuote:
			case c == '(':
				depth++
			case c == ')':
				depth--
				if depth == 0 && i != len(token)-1 {
					wrapped = false
				}
			}
		}

		if !wrapped || depth != 0 || inQuote {
			return token
		}

		token = strings.TrimSpace(token[1 : len(token)-1])
	}

	return token
}

// quotedBody unwraps a complete single-quoted literal: doubled quotes fold
// back to one everywhere, backslash escapes additionally for PostgreSQL
// E'...' strings, and the N'...' national prefix for SQL Server. Tokens
// with anything outside the quotes are not pure literals.
func quotedBody(dialect tabledesc.Dialect, token string) (string, bool) {
	t := token
	escapes := false

	switch {
	case strings.HasPrefix(t, "E'") || strings.HasPrefix(t, "e'"):
		if dialect != tabledesc.DialectPostgres {
			return "", false
		}

		escapes = true
		t = t[1:]
	case strings.HasPrefix(t, "N'") || strings.HasPrefix(t, "n'"):
		if dialect != tabledesc.DialectMSSQL {
			return "", false
		}

		t = t[1:]
	}

	if !strings.HasPrefix(t, "'") {
		return "", false
	}

	end := closingQuote(t, escapes)
	if end != len(t)-1 {
		return "", false
	}

	body := strings.ReplaceAll(t[1:end], "''", "'")
	if escapes {
		body = unescapeBackslashes(body)
	}

	return body, true
}

// closingQuote returns the index of the quote terminating the string
// literal opened by the first quote of token, or -1. Doubled quotes stay
// inside the literal; with escapes a backslash protects the next byte.
func closingQuote(token string, escapes bool) int {
	start := strings.IndexByte(token, '\'')
	if start < 0 {
		return -1
	}

	for i := start + 1; i < len(token); i++ {
		switch {
		case escapes && token[i] == '\\':
			i++
		case token[i] == '\'':
			if i+1 < len(token) && token[i+1] == '\'' {
				i++
				continue
			}

			return i
		}
	}

	return -1
}

func unescapeBackslashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}

		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}

	return b.String()
}
