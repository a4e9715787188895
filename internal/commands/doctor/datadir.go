package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DataDirCheck verifies the data directory exists and is writable.
type DataDirCheck struct {
	dir string
	fix bool
}

// NewDataDirCheck creates a data directory check. If fix is true, a missing
// directory is created.
func NewDataDirCheck(dir string, fix bool) *DataDirCheck {
	return &DataDirCheck{dir: dir, fix: fix}
}

func (c *DataDirCheck) Name() string {
	return "Data Directory"
}

func (c *DataDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dir)
	switch {
	case os.IsNotExist(err):
		if !c.fix {
			result.Items = append(result.Items, CheckItem{
				Label:   "Exists",
				Status:  StatusWarn,
				Detail:  c.dir + " does not exist yet (created on first write)",
				Fixable: true,
			})
			return result
		}
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			result.Items = append(result.Items, CheckItem{Label: "Create", Status: StatusFail, Detail: err.Error()})
			return result
		}
		result.Items = append(result.Items, CheckItem{Label: "Exists", Status: StatusPass, Detail: "created " + c.dir})
	case err != nil:
		result.Items = append(result.Items, CheckItem{Label: "Exists", Status: StatusFail, Detail: err.Error()})
		return result
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{Label: "Exists", Status: StatusFail, Detail: c.dir + " is not a directory"})
		return result
	default:
		result.Items = append(result.Items, CheckItem{Label: "Exists", Status: StatusPass, Detail: c.dir})
	}

	result.Items = append(result.Items, c.writable())
	return result
}

func (c *DataDirCheck) writable() CheckItem {
	f, err := os.CreateTemp(c.dir, ".doctor-*")
	if err != nil {
		return CheckItem{Label: "Writable", Status: StatusFail, Detail: err.Error()}
	}
	name := f.Name()
	_ = f.Close()

	if err := os.Remove(name); err != nil {
		return CheckItem{Label: "Writable", Status: StatusWarn, Detail: fmt.Sprintf("remove %s: %v", filepath.Base(name), err)}
	}
	return CheckItem{Label: "Writable", Status: StatusPass}
}
