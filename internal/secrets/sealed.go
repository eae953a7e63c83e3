package secrets

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// Sealed is a string column encrypted with the configured cipher on write and
// decrypted on read. Use *Sealed for nullable columns.
type Sealed string

func (s Sealed) String() string {
	return string(s)
}

// Value implements driver.Valuer.
func (s Sealed) Value() (driver.Value, error) {
	c := current()
	if c == nil || s == "" {
		return string(s), nil
	}
	return c.Seal(string(s))
}

// Scan implements sql.Scanner.
func (s *Sealed) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = ""
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("secrets: cannot scan %T into Sealed", src)
	}

	if c := current(); c != nil {
		plain, err := c.Open(raw)
		if err != nil {
			return err
		}
		*s = Sealed(plain)
		return nil
	}

	if len(raw) >= len(sealedPrefix) && raw[:len(sealedPrefix)] == sealedPrefix {
		return errors.New("secrets: encrypted value read without a configured key")
	}
	*s = Sealed(raw)
	return nil
}

// GormDataType keeps migrations mapping Sealed to a text column.
func (Sealed) GormDataType() string {
	return "text"
}
