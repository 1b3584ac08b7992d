package display

// ApplyPagination retorna no máximo rowsPerPage itens a partir de page*rowsPerPage.
// Páginas fora do intervalo retornam uma fatia vazia.
func ApplyPagination[T any](items []T, page, rowsPerPage int) []T {
	if page < 0 || rowsPerPage <= 0 {
		return []T{}
	}
	// Compara antes de multiplicar para que páginas enormes não estourem o int.
	if len(items) == 0 || page > (len(items)-1)/rowsPerPage {
		return []T{}
	}
	start := page * rowsPerPage
	end := start + rowsPerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
