package repository

import "time"

// ProfileListFilter 查询账号列表的过滤条件
type ProfileListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// MerchantListFilter 查询商户列表的过滤条件
type MerchantListFilter struct {
	Page       int
	PageSize   int
	City       string
	Keyword    string
	OnlyActive bool
}

// OfferListFilter 查询优惠列表的过滤条件
type OfferListFilter struct {
	Page         int
	PageSize     int
	MerchantID   string
	OnlyActive   bool
	WithMerchant bool
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// PointsTransactionListFilter 查询积分流水列表的过滤条件
type PointsTransactionListFilter struct {
	Page        int
	PageSize    int
	CustomerID  string
	MerchantID  string
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	OnlyActive bool
}

// BalanceRow 顾客在单个门店的积分余额
type BalanceRow struct {
	MerchantID string `json:"merchant_id"`
	StoreName  string `json:"store_name"`
	City       string `json:"city"`
	Points     int64  `json:"points"`
}

// CustomerPointsRow 顾客积分汇总（报表用）
type CustomerPointsRow struct {
	CustomerID  string `json:"customer_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	StoreCount  int64  `json:"store_count"`
	TotalPoints int64  `json:"total_points"`
}
