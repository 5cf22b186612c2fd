package png_info

type Inspector interface {
	Info() *PNGInfo
	ChunkTypes() []string
}
