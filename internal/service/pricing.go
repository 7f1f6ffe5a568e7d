package service

import (
	"github.com/shopspring/decimal"
)

// 积分抵扣比例范围
const (
	MinPointsPercentage = 1
	MaxPointsPercentage = 99
)

// MaxOfferPrice 单个优惠总价上限，保证推导出的积分不超出余额上限
var MaxOfferPrice = decimal.NewFromInt(1_000_000_000_000)

var (
	decimalHundred = decimal.NewFromInt(100)
)

// ComputeRequiredPoints 按总价与积分比例计算所需积分
//
// points = floor(totalPrice * pct / 100 * 100)，结果以"分"为积分单位。
// 负价格、超过 MaxOfferPrice 或比例越界直接拒绝，不做截断。
func ComputeRequiredPoints(totalPrice decimal.Decimal, pointsPercentage int) (int64, error) {
	if err := validatePricingInput(totalPrice, pointsPercentage); err != nil {
		return 0, err
	}
	share := totalPrice.Mul(decimal.NewFromInt(int64(pointsPercentage))).Div(decimalHundred)
	return share.Mul(decimalHundred).Floor().IntPart(), nil
}

// PriceFromPoints 由积分与比例反推总价（保留 2 位小数）
func PriceFromPoints(points int64, pointsPercentage int) (decimal.Decimal, error) {
	if points < 0 {
		return decimal.Zero, ErrPointsAmountInvalid
	}
	if pointsPercentage < MinPointsPercentage || pointsPercentage > MaxPointsPercentage {
		return decimal.Zero, ErrOfferPercentageInvalid
	}
	return decimal.NewFromInt(points).Div(decimal.NewFromInt(int64(pointsPercentage))).Round(2), nil
}

// CashShare 总价中需以现金支付的部分
func CashShare(totalPrice decimal.Decimal, pointsPercentage int) (decimal.Decimal, error) {
	if err := validatePricingInput(totalPrice, pointsPercentage); err != nil {
		return decimal.Zero, err
	}
	cashPct := decimal.NewFromInt(int64(100 - pointsPercentage))
	return totalPrice.Mul(cashPct).Div(decimalHundred).Round(2), nil
}

func validatePricingInput(totalPrice decimal.Decimal, pointsPercentage int) error {
	if totalPrice.IsNegative() || totalPrice.GreaterThan(MaxOfferPrice) {
		return ErrOfferPriceInvalid
	}
	if pointsPercentage < MinPointsPercentage || pointsPercentage > MaxPointsPercentage {
		return ErrOfferPercentageInvalid
	}
	return nil
}
