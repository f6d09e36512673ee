package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Product представляет товар каталога
type Product struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	CategoryID *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	Stock      int        `json:"stock" db:"stock"`
	IsFeatured bool       `json:"is_featured" db:"is_featured"`
	IsOnSale   bool       `json:"is_on_sale" db:"is_on_sale"`
	Images     []string   `json:"images" db:"images"`
}

// Category представляет категорию товаров
type Category struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// ProductRef - товар, присоединенный к позиции заказа или к избранному.
type ProductRef struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Images     []string   `json:"images,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
}

// Thumbnail возвращает первое изображение товара или пустую строку.
func (p *ProductRef) Thumbnail() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductRelation декодирует присоединенный товар из выгрузки хранилища.
// Связь приходит то объектом, то массивом из одного элемента, то null;
// после декодирования Ref либо nil, либо указывает на единственный товар.
type ProductRelation struct {
	Ref *ProductRef
}

// UnmarshalJSON приводит все формы связи к одному виду.
func (r *ProductRelation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	r.Ref = nil

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '[' {
		var list []*ProductRef
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("failed to decode product relation list: %w", err)
		}
		switch len(list) {
		case 0:
			return nil
		case 1:
			r.Ref = normalizeRef(list[0])
			return nil
		default:
			return fmt.Errorf("product relation has %d elements, expected at most one", len(list))
		}
	}

	var ref ProductRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return fmt.Errorf("failed to decode product relation: %w", err)
	}
	r.Ref = normalizeRef(&ref)
	return nil
}

// MarshalJSON всегда пишет связь объектом (или null).
func (r ProductRelation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Ref)
}

// normalizeRef отбрасывает пустые объекты, у которых нет id (удаленный товар).
func normalizeRef(ref *ProductRef) *ProductRef {
	if ref == nil || ref.ID == uuid.Nil {
		return nil
	}
	return ref
}
