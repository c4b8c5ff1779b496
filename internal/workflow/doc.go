// Package workflow — end-to-end прогон: create dataset → register
// replicas → attach files → close dataset.
//
// Оркестратор связывает registrar и dataset.Lifecycle в один
// последовательный pipeline с чёткой политикой частичного провала:
// провал create прерывает запуск, провал отдельных файлов — нет,
// провал close фиксируется в результате, но не откатывает сделанное.
package workflow
