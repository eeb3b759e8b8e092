package webadmin

import (
	"fmt"
	"slices"

	"serotonyl.ru/moderator-bot/internal/common"
)

const (
	ModeCreate = "create"
	ModeUpdate = "update"
	ModeDelete = "delete"
)

// collection описывает список однотипных карточек в документе.
type collection[T any] struct {
	kind     string // префикс id: service, price, group, testimonial
	label    string // для сообщений об ошибках
	items    func(doc *Document) *[]T
	id       func(item *T) *string
	name     func(item *T) string
	required func(item *T) map[string]string
}

var (
	services = collection[Service]{
		kind:  "service",
		label: "Service",
		items: func(d *Document) *[]Service { return &d.Services },
		id:    func(it *Service) *string { return &it.ID },
		name:  func(it *Service) string { return it.Name },
		required: func(it *Service) map[string]string {
			return map[string]string{"name": it.Name, "description": it.Description, "duration": it.Duration, "price": it.Price}
		},
	}
	prices = collection[Price]{
		kind:  "price",
		label: "Price",
		items: func(d *Document) *[]Price { return &d.Pricing },
		id:    func(it *Price) *string { return &it.ID },
		name:  func(it *Price) string { return it.Name },
		required: func(it *Price) map[string]string {
			return map[string]string{"name": it.Name, "description": it.Description, "price": it.Price}
		},
	}
	groups = collection[Group]{
		kind:  "group",
		label: "Group",
		items: func(d *Document) *[]Group { return &d.Groups },
		id:    func(it *Group) *string { return &it.ID },
		name:  func(it *Group) string { return it.Name },
		required: func(it *Group) map[string]string {
			return map[string]string{"name": it.Name, "description": it.Description, "schedule": it.Schedule,
				"price": it.Price, "format_name": it.Format}
		},
	}
	testimonials = collection[Testimonial]{
		kind:  "testimonial",
		label: "Testimonial",
		items: func(d *Document) *[]Testimonial { return &d.Testimonials },
		id:    func(it *Testimonial) *string { return &it.ID },
		name:  func(it *Testimonial) string { return it.Name },
		required: func(it *Testimonial) map[string]string {
			return map[string]string{"name": it.Name, "text": it.Text, "tag": it.Tag}
		},
	}
)

// missingField возвращает имя первого пустого обязательного поля (в алфавитном порядке).
func (c collection[T]) missingField(item *T) string {
	fields := c.required(item)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fields[k] == "" {
			return k
		}
	}
	return ""
}

// apply выполняет create/update/delete над списком. Любой другой mode — create.
// Удаление несуществующего id ничего не меняет.
func (c collection[T]) apply(doc *Document, mode, itemID string, in T) error {
	list := c.items(doc)

	switch mode {
	case ModeDelete:
		*list = slices.DeleteFunc(*list, func(it T) bool { return *c.id(&it) == itemID })
		return nil

	case ModeUpdate:
		for i := range *list {
			if *c.id(&(*list)[i]) == itemID {
				*c.id(&in) = itemID
				(*list)[i] = in
				return nil
			}
		}
		return fmt.Errorf("%s not found: %w", c.label, common.ErrItemNotFound)

	default:
		*c.id(&in) = fmt.Sprintf("%s-%s-%d", c.kind, Slugify(c.name(&in)), len(*list)+1)
		*list = append(*list, in)
		return nil
	}
}
