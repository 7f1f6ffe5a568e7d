package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yml
var defaultFixtures []byte

// Fixtures 演示数据
type Fixtures struct {
	Password  string            `yaml:"password"`
	Merchants []MerchantFixture `yaml:"merchants"`
	Customers []CustomerFixture `yaml:"customers"`
	Products  []ProductFixture  `yaml:"products"`
}

// MerchantFixture 门店及其优惠
type MerchantFixture struct {
	Name      string         `yaml:"name"`
	Email     string         `yaml:"email"`
	StoreName string         `yaml:"store_name"`
	City      string         `yaml:"city"`
	State     string         `yaml:"state"`
	WhatsApp  string         `yaml:"whatsapp"`
	Offers    []OfferFixture `yaml:"offers"`
}

// OfferFixture 优惠
type OfferFixture struct {
	Title            string `yaml:"title"`
	Description      string `yaml:"description"`
	TotalPrice       string `yaml:"total_price"`
	PointsPercentage int    `yaml:"points_percentage"`
	ValidDays        int    `yaml:"valid_days"`
}

// CustomerFixture 顾客
type CustomerFixture struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// ProductFixture 积分商城商品
type ProductFixture struct {
	Category         string `yaml:"category"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	Price            string `yaml:"price"`
	PointsPercentage int    `yaml:"points_percentage"`
}

// loadFixtures 读取 YAML，path 为空时使用内置数据
func loadFixtures(path string) (*Fixtures, error) {
	data := defaultFixtures
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures failed: %w", err)
		}
		data = raw
	}
	return parseFixtures(data)
}

func parseFixtures(data []byte) (*Fixtures, error) {
	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures failed: %w", err)
	}
	if strings.TrimSpace(fixtures.Password) == "" {
		return nil, fmt.Errorf("fixtures password is required")
	}
	for i, merchant := range fixtures.Merchants {
		if strings.TrimSpace(merchant.Email) == "" || strings.TrimSpace(merchant.StoreName) == "" {
			return nil, fmt.Errorf("merchant #%d requires email and store_name", i+1)
		}
	}
	return &fixtures, nil
}
