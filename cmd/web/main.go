// @title           SOS Mecânicos API
// @version         1.0
// @description     API do marketplace de assistência veicular: clientes, mecânicos, guinchos e seguradoras.
// @host            localhost:4000
// @BasePath        /

package main

import "github.com/Zoemateus324/sosmecanicos-sub000/internal/app"

func main() {
	app.Run()
}
