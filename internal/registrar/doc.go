// Package registrar — batch-регистрация файловых реплик в каталоге.
//
// Обрабатывает списки файлов с ограниченным параллелизмом и
// повторами per-file. Частичный провал — нормальный режим: каждый
// файл получает собственный результат, порядок входа сохраняется.
package registrar
