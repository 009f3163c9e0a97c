// Package migrations содержит SQL схему базы данных автопарка
package migrations

import "embed"

// FS - файлы миграций; применяются database.Migrate при старте сервера
//
//go:embed *.sql
var FS embed.FS
