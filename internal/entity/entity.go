package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Product{},
		&WorkCenter{},

		// BOM
		&BOM{},
		&BOMLine{},

		// 工艺路线
		&Routing{},
		&Operation{},

		// 库存
		&Inventory{},

		// 生产
		&ProductionOrder{},
	)
}
