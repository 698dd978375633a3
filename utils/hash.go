package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// FileMD5 计算文件MD5
func FileMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// BytesMD5 计算字节数组MD5
func BytesMD5(data []byte) string {
	hash := md5.New()
	hash.Write(data)
	return hex.EncodeToString(hash.Sum(nil))
}

// ShortHash 计算短哈希（MD5 前 8 位），用于缓存键中的参数指纹
func ShortHash(data []byte) string {
	return BytesMD5(data)[:8]
}
