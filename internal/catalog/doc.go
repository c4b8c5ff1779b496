// Package catalog — клиент удалённого каталога datasets и реплик.
//
// Каталог — единственное авторитетное хранилище системы. Пакет
// определяет интерфейс Client, HTTP-реализацию и фиксированный
// набор tagged-ошибок, к которым сводится каждый ответ сервера.
// Классификация ошибок для повторов — catalog.Classify.
package catalog
