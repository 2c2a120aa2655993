package enum

import (
	"database/sql/driver"
	"fmt"
)

// ClientSource records how a client record first entered the CRM
type ClientSource string

const (
	ClientSourceManual ClientSource = "manual"
	ClientSourceOnline ClientSource = "online"
	ClientSourceImport ClientSource = "import"
)

func (s ClientSource) IsValid() bool {
	switch s {
	case ClientSourceManual, ClientSourceOnline, ClientSourceImport:
		return true
	}
	return false
}

func (s ClientSource) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ClientSource) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = ClientSourceManual
	case string:
		*s = ClientSource(v)
	case []byte:
		*s = ClientSource(v)
	default:
		return fmt.Errorf("cannot scan %T into ClientSource", value)
	}
	return nil
}
