// Package mediahttp реализует HTTP-интерфейс медиасервера поверх каталога с файлами:
//   - GET /: индексная страница со списком файлов и формой загрузки.
//   - GET|HEAD /files/*: отдача файла с поддержкой одного диапазона Range (200/206/416/400).
//   - GET|HEAD /video/*: то же самое, этот путь использует страница плеера.
//   - GET /player/*: страница с HTML5-плеером для файла.
//   - POST /upload: загрузка, тело целиком или псевдо-multipart, ответ 303 на "/".
//   - GET /health: размер каталога для health-check'ов.
//   - POST /admin/gc: ручная очистка брошенных временных файлов загрузок.
//
// Каждый запрос занимает слот в ограниченном пуле обработчиков.
package mediahttp
