package repository

import "strings"

// listTasksQuery builds the filtered listing with ? placeholders.
func listTasksQuery(f TaskFilter) (string, []any) {
	var where []string
	var args []any

	if f.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*f.Status))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	return query, args
}

// updateTaskQuery sets only the supplied columns plus updated_at.
func updateTaskQuery(id int64, p TaskPatch, updatedAt any) (string, []any) {
	var set []string
	var args []any

	if p.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*p.Status))
	}
	set = append(set, "updated_at = ?")
	args = append(args, updatedAt, id)

	return "UPDATE tasks SET " + strings.Join(set, ", ") + " WHERE id = ?", args
}
