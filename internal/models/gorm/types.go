package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is a JSON-encoded []string column (jsonb on postgres, text elsewhere).
type StringList []string

// BoolMap is a JSON-encoded map[string]bool column.
type BoolMap map[string]bool

// StringMap is a JSON-encoded map[string]string column.
type StringMap map[string]string

func (l StringList) Value() (driver.Value, error) { return jsonValue(l) }
func (m BoolMap) Value() (driver.Value, error)    { return jsonValue(m) }
func (m StringMap) Value() (driver.Value, error)  { return jsonValue(m) }

func (l *StringList) Scan(src interface{}) error { return jsonScan(src, l) }
func (m *BoolMap) Scan(src interface{}) error    { return jsonScan(src, m) }
func (m *StringMap) Scan(src interface{}) error  { return jsonScan(src, m) }

func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string { return jsonDataType(db) }
func (BoolMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string    { return jsonDataType(db) }
func (StringMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string  { return jsonDataType(db) }

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src interface{}, dst interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func jsonDataType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
