package dataset

// ColumnProfile summarizes one column for diagnostics.
type ColumnProfile struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Rows     int    `json:"rows"`
	Missing  int    `json:"missing"`
	Distinct int    `json:"distinct"`
}

// Profile returns one ColumnProfile per column in order. Distinct counts
// non-missing values only.
func (d *Dataset) Profile() []ColumnProfile {
	out := make([]ColumnProfile, 0, d.Width())
	var key []byte
	for _, c := range d.cols {
		seen := make(map[string]struct{})
		for _, v := range c.Cells {
			if v.IsMissing() {
				continue
			}
			key = v.AppendKey(key[:0])
			seen[string(key)] = struct{}{}
		}
		out = append(out, ColumnProfile{
			Name:     c.Name,
			Kind:     c.Kind.String(),
			Rows:     len(c.Cells),
			Missing:  c.MissingCount(),
			Distinct: len(seen),
		})
	}
	return out
}
