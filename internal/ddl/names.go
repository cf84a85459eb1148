package ddl

import (
	"strings"

	"github.com/google/uuid"
)

// SplitFQN splits "schema.table" into its schema and table parts. A name
// without a dot has an empty schema.
func SplitFQN(fqn string) (schema, table string) {
	fqn = strings.TrimSpace(fqn)
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i], fqn[i+1:]
	}
	return "", fqn
}

// StagingName returns a fresh sibling of fqn in the same schema, used to
// build a replacement table before swapping it in.
func StagingName(fqn string) string {
	schema, table := SplitFQN(fqn)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := table + "__staging_" + suffix
	if schema == "" {
		return name
	}
	return schema + "." + name
}
