package memory

import "github.com/salesdojo/backend/internal/domain"

func strPtr(s string) *string { return &s }

// seed loads the demo catalogue and two accounts without passwords.
func (d *db) seed() {
	now := d.now()

	cats := []struct{ name, slug, desc string }{
		{"Потребности", "needs", "Выявление потребностей клиента"},
		{"Возражения", "objections", "Работа с возражениями"},
		{"Постмитинг", "postmeet", "Работа после встречи"},
		{"Закрытие", "closing", "Закрытие сделки"},
	}
	ids := map[string]string{}
	for i, c := range cats {
		id := newID()
		ids[c.slug] = id
		d.categories[id] = &domain.Category{
			ID: id, Name: c.name, Slug: c.slug, Description: c.desc,
			Icon: "globe.svg", OrderIndex: i + 1, CreatedAt: now, UpdatedAt: now,
		}
	}

	lessons := []struct{ title, slug, content string }{
		{"Основы выявления потребностей", "needs", "Содержание урока о выявлении потребностей..."},
		{"Работа с ценовыми возражениями", "objections", "Содержание урока о работе с ценовыми возражениями..."},
		{"Эмоциональные потребности клиента", "needs", "Как выявлять эмоциональные потребности клиента и адаптировать под них презентацию."},
		{"Анализ бюджета клиента", "needs", "Как деликатно выяснять бюджетные рамки и обосновывать ценность продукта."},
	}
	for i, l := range lessons {
		id := newID()
		d.lessons[id] = &domain.Lesson{
			ID: id, CategoryID: strPtr(ids[l.slug]), Title: l.title, Description: l.title,
			Content: l.content, Type: domain.LessonTypeSprint, Icon: "demo",
			OrderIndex: i + 1, IsPublished: true, CreatedAt: now, UpdatedAt: now,
		}
	}

	for _, u := range []struct{ email, name, role string }{
		{"admin@example.com", "Admin User", domain.RoleAdmin},
		{"user@example.com", "Regular User", domain.RoleUser},
	} {
		id := newID()
		d.users[id] = &domain.User{
			ID: id, Email: u.email, FullName: u.name, Role: u.role,
			Preferences: map[string]any{}, CreatedAt: now, UpdatedAt: now,
		}
	}
}
