package repository

import "gorm.io/gorm"

const maxPageSize = 200

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	page, pageSize = normalizePagination(page, pageSize)
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// normalizePagination 页码最小为 1，单页条数不超过 maxPageSize。
func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
