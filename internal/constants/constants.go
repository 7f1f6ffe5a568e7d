package constants

// 角色常量
const (
	RoleCustomer = "customer"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// Roles 全部可登录角色
var Roles = []string{RoleCustomer, RoleMerchant, RoleAdmin}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 积分流水类型常量
const (
	PointsTxnTypeEnroll = "enroll"
	PointsTxnTypeAccrue = "accrue"
	PointsTxnTypeRedeem = "redeem"
)

// 报表类型常量
const (
	ReportTypeUsers     = "users"
	ReportTypeMerchants = "merchants"
	ReportTypeCustomers = "customers"
	ReportTypeOffers    = "offers"
	ReportTypePoints    = "points"
)

// ReportTypes 支持的报表类型
var ReportTypes = []string{ReportTypeUsers, ReportTypeMerchants, ReportTypeCustomers, ReportTypeOffers, ReportTypePoints}

// 商城商品分类常量
const (
	ProductCategoryElectronics = "electronics"
	ProductCategoryHome        = "home"
	ProductCategoryFashion     = "fashion"
	ProductCategorySports      = "sports"
	ProductCategoryOthers      = "others"
)

// ProductCategories 商城商品分类
var ProductCategories = []string{
	ProductCategoryElectronics,
	ProductCategoryHome,
	ProductCategoryFashion,
	ProductCategorySports,
	ProductCategoryOthers,
}

// 报表任务状态常量
const (
	ReportStatusPending = "pending"
	ReportStatusRunning = "running"
	ReportStatusDone    = "done"
	ReportStatusFailed  = "failed"
)

// 变更事件类型常量
const (
	FeedEventInsert = "insert"
	FeedEventUpdate = "update"
	FeedEventDelete = "delete"
)

// 订阅视图范围常量
const (
	FeedScopeMerchant   = "merchant"
	FeedScopeStorefront = "storefront"
)

// 队列常量
const (
	QueueDefault       = "default"
	TaskReportGenerate = "report:generate"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "fid"
)

// 站点语言常量
const (
	LocalePtBR = "pt-BR"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocalePtBR, LocaleEnUS}

// 导出格式常量
const (
	ExportFormatCSV = "csv"
)

// 日期格式常量
const (
	DateLayout = "2006-01-02"
)
