// Package domain содержит общую модель данных оркестрации:
// FileInfo, Dataset, результаты batch-операций и классификацию ошибок.
//
// Типы пакета — value objects без поведения ввода-вывода.
// Вся валидация здесь локальная: до первого обращения к каталогу.
//
// Дополнительно пакет содержит DID-хелперы (извлечение scope из имени
// dataset'а, генерация и форматирование GUID) и разбор PFN.
package domain
