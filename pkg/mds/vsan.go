package mds

import (
	"context"
	"strconv"
)

// Vsan is a logical partition of the fabric. Zones are always scoped to
// exactly one VSAN, so zone operations resolve the VSAN on every access.
type Vsan struct {
	sw *Switch
	id int
}

// NewVsan binds a VSAN id to a switch. The id is not validated here; it is
// re-resolved against the device on every ID call.
func NewVsan(sw *Switch, id int) *Vsan {
	return &Vsan{sw: sw, id: id}
}

// ID resolves the VSAN on the switch and returns its numeric id, or a
// VsanNotPresentError when the device does not know it.
func (v *Vsan) ID(ctx context.Context) (int, error) {
	cmd := "show vsan " + strconv.Itoa(v.id)
	out, err := v.sw.Show(ctx, cmd)
	if err != nil {
		return 0, err
	}
	vs := rows(out.Get("TABLE_vsan.ROW_vsan"))
	for _, r := range vs {
		if int(r.Get("vsan_id").Int()) == v.id {
			return v.id, nil
		}
	}
	return 0, &VsanNotPresentError{ID: v.id}
}
