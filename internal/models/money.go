package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var (
	errEmptyAmount     = errors.New("empty amount")
	errAmountPrecision = errors.New("amount has more than two decimal places")

	// 只含点且每组三位时按千分位处理，例如 "1.234"
	dotGroupedPattern = regexp.MustCompile(`^-?[1-9]\d{0,2}(\.\d{3})+$`)
)

// Money 金额，固定两位小数，JSON 输出为字符串
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyPlaces)}
}

// ParseMoney 解析金额输入
//
// 接受 "300.00"、"300,00"、"1.234,56"、"1,234.56" 以及带 "R$" 前缀的写法；
// 同时出现点和逗号时，靠后的一个是小数点；只有点且按三位分组时视为千分位。
// 超过两位小数的输入直接拒绝，不做舍入。
func ParseMoney(raw string) (Money, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimSpace(strings.TrimPrefix(value, "R$"))
	if value == "" {
		return Money{}, errEmptyAmount
	}
	value = strings.ReplaceAll(value, " ", "")

	dot, comma := strings.LastIndex(value, "."), strings.LastIndex(value, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		value = strings.ReplaceAll(value, ",", "")
	case comma >= 0:
		value = strings.Replace(value, ",", ".", 1)
	case dotGroupedPattern.MatchString(value):
		value = strings.ReplaceAll(value, ".", "")
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return exactMoney(d)
}

func exactMoney(amount decimal.Decimal) (Money, error) {
	if !amount.Equal(amount.Truncate(moneyPlaces)) {
		return Money{}, errAmountPrecision
	}
	return NewMoneyFromDecimal(amount), nil
}

// String 两位小数，点作小数点
func (m Money) String() string {
	return m.Decimal.StringFixed(moneyPlaces)
}

// MarshalJSON 输出字符串形式，避免前端浮点误差
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 接受字符串或数字
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	var (
		parsed Money
		err    error
	)
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		parsed, err = ParseMoney(text)
	} else {
		// JSON 数字里的点总是小数点
		var d decimal.Decimal
		if d, err = decimal.NewFromString(raw); err == nil {
			parsed, err = exactMoney(d)
		}
	}
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value 写库前统一舍入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyPlaces).Value()
}

// Scan 读库
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = NewMoneyFromDecimal(d)
	return nil
}
