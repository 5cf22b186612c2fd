package discord_publisher

type Publisher interface {
	Publish(sourcePath, fileName string, pngData []byte) error
}
