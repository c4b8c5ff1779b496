// Package dataset — жизненный цикл dataset'а в каталоге.
//
// Машина состояний минимальна: OPEN → CLOSED, без обратного перехода,
// dataset'ы не удаляются. Пакет создаёт dataset'ы (с опциональным
// adopt существующего OPEN), присоединяет к ним файлы batch'ами и
// закрывает их идемпотентно.
package dataset
