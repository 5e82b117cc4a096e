package repository

import (
	"fmt"
	"strings"

	"github.com/deppfellow/client-directory/internal/model/client"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a user value into an ILIKE substring pattern.
// LIKE wildcards in the value are escaped so they match literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// args collects positional parameters and hands out their placeholders.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// buildUpdateClient assembles an UPDATE over the patch's present fields.
// ok is false when the patch sets no client column.
func buildUpdateClient(id int64, p client.Patch) (query string, params []any, ok bool) {
	var (
		sets []string
		a    args
	)

	if p.FirstName != nil {
		sets = append(sets, "first_name = "+a.add(*p.FirstName))
	}
	if p.LastName != nil {
		sets = append(sets, "last_name = "+a.add(*p.LastName))
	}
	if p.Email != nil {
		sets = append(sets, "email = "+a.add(*p.Email))
	}

	if len(sets) == 0 {
		return "", nil, false
	}

	query = "UPDATE clients SET " + strings.Join(sets, ", ") + " WHERE id = " + a.add(id)
	return query, a, true
}

const findClientsSelect = `SELECT c.id,
       COALESCE(c.first_name, ''),
       COALESCE(c.last_name, ''),
       COALESCE(c.email, ''),
       COALESCE(ARRAY_AGG(p.phone_number ORDER BY p.id) FILTER (WHERE p.id IS NOT NULL), '{}')
FROM clients c
LEFT JOIN phones p ON p.client_id = c.id`

const findClientsGroup = `
GROUP BY c.id
ORDER BY c.id`

// buildFindClients assembles the lookup for f. Each set field adds one
// ILIKE condition; the phone condition applies to joined phone rows, so only
// matching numbers are aggregated.
func buildFindClients(f client.Filter) (string, []any) {
	var (
		conds []string
		a     args
	)

	if f.FirstName != nil {
		conds = append(conds, "c.first_name ILIKE "+a.add(containsPattern(*f.FirstName)))
	}
	if f.LastName != nil {
		conds = append(conds, "c.last_name ILIKE "+a.add(containsPattern(*f.LastName)))
	}
	if f.Email != nil {
		conds = append(conds, "c.email ILIKE "+a.add(containsPattern(*f.Email)))
	}
	if f.Phone != nil {
		conds = append(conds, "p.phone_number ILIKE "+a.add(containsPattern(*f.Phone)))
	}

	query := findClientsSelect
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, "\n  AND ")
	}
	query += findClientsGroup

	return query, a
}
